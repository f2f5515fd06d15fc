package validators

import (
	"goshop/internal/models"
	"goshop/internal/services"
)

type UpdateOrderStatusRequest struct {
	Status         string `json:"status" validate:"required,oneof=confirmed processing shipping delivered cancelled refunded"`
	TrackingNumber string `json:"tracking_number" validate:"omitempty,max=50"`
	Reason         string `json:"reason" validate:"omitempty,max=255"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=255"`
}

func ValidateCreateOrder(req *services.CreateOrderRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if req.ShippingAddress.Phone != "" {
		phoneReq := struct {
			Phone string `validate:"phone_number"`
		}{Phone: req.ShippingAddress.Phone}
		errors = append(errors, ValidateStruct(&phoneReq)...)
	}

	return errors
}

func ValidateUpdateOrderStatus(req *UpdateOrderStatusRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if models.OrderStatus(req.Status) == models.OrderStatusCancelled && req.Reason == "" {
		errors = append(errors, ValidationError{
			Field:   "reason",
			Message: "A reason is required when cancelling an order",
		})
	}

	return errors
}

func ValidateCancelOrder(req *CancelOrderRequest) ValidationErrors {
	return ValidateStruct(req)
}
