package validators

import (
	"goshop/internal/models"
	"goshop/internal/services"
)

func ValidateCreateCoupon(req *services.CreateCouponRequest) ValidationErrors {
	errors := ValidateStruct(req)

	codeReq := struct {
		Code string `validate:"coupon_code"`
	}{Code: req.Code}
	errors = append(errors, ValidateStruct(&codeReq)...)

	if req.DiscountType == models.DiscountTypePercentage && req.DiscountValue > 100 {
		errors = append(errors, ValidationError{
			Field:   "discount_value",
			Message: "Percentage discount cannot exceed 100",
		})
	}

	if !req.EndDate.IsZero() && !req.StartDate.IsZero() && !req.EndDate.After(req.StartDate) {
		errors = append(errors, ValidationError{
			Field:   "end_date",
			Message: "End date must be after start date",
		})
	}

	return errors
}

func ValidateCreateRule(req *services.CreateRuleRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if req.TriggerType != models.TriggerTypeFirstOrder && req.Threshold <= 0 {
		errors = append(errors, ValidationError{
			Field:   "threshold",
			Message: "Threshold must be positive for this trigger type",
		})
	}

	if req.Template.ValidDays <= 0 {
		errors = append(errors, ValidationError{
			Field:   "template.valid_days",
			Message: "Coupon template must be valid for at least one day",
		})
	}

	if req.Template.DiscountType == models.DiscountTypePercentage && req.Template.DiscountValue > 100 {
		errors = append(errors, ValidationError{
			Field:   "template.discount_value",
			Message: "Percentage discount cannot exceed 100",
		})
	}

	return errors
}
