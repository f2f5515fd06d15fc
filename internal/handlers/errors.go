package handlers

import (
	"errors"
	"net/http"

	"goshop/internal/services"
	"goshop/internal/utils"
	"goshop/internal/validators"

	"github.com/gin-gonic/gin"
)

// handleServiceError maps service sentinel errors onto HTTP responses.
// Anything unrecognized is a 500 with no internal detail leaked.
func handleServiceError(c *gin.Context, err error) {
	var gatewayErr *services.GatewayError
	if errors.As(err, &gatewayErr) {
		utils.ErrorResponse(c, http.StatusBadGateway, "GATEWAY_ERROR", gatewayErr.Message)
		return
	}

	switch {
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrPaymentNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrVariantNotFound),
		errors.Is(err, services.ErrCouponNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", err.Error())

	case errors.Is(err, services.ErrCartEmpty),
		errors.Is(err, services.ErrProductUnavailable),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrCouponInactive),
		errors.Is(err, services.ErrCouponExpired),
		errors.Is(err, services.ErrCouponLimitReached),
		errors.Is(err, services.ErrCouponUserLimit),
		errors.Is(err, services.ErrCouponNotEligible),
		errors.Is(err, services.ErrCouponMinOrder),
		errors.Is(err, services.ErrCouponNotApplicable),
		errors.Is(err, services.ErrUnsupportedMethod):
		utils.BadRequestResponse(c, err.Error())

	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrPaymentCompleted),
		errors.Is(err, services.ErrPaymentNotRefundable):
		utils.ConflictResponse(c, err.Error())

	case errors.Is(err, services.ErrInvalidSignature):
		utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_SIGNATURE", err.Error())

	default:
		utils.InternalServerErrorResponse(c)
	}
}

func validationDetails(errs validators.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, e := range errs {
		details[e.Field] = e.Message
	}
	return details
}
