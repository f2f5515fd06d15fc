package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"goshop/internal/middleware"
	"goshop/internal/services"
	"goshop/internal/utils"
	"goshop/internal/validators"
	"goshop/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentHandler struct {
	paymentService services.PaymentService
	logger         *logger.Logger
}

func NewPaymentHandler(paymentService services.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         log,
	}
}

// CreatePayment opens a payment session for an order.
// POST /api/v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request validators.CreatePaymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if errs := validators.ValidateCreatePayment(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	orderID, err := primitive.ObjectIDFromHex(request.OrderID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID")
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), orderID, userID, c.ClientIP())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Payment session created successfully", payment)
}

// MomoCallback receives the MoMo IPN notification. MoMo expects 204 on
// success and retries on anything else.
// POST /api/v1/payments/momo/callback
func (h *PaymentHandler) MomoCallback(c *gin.Context) {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	params := make(map[string]string, len(raw))
	for key, value := range raw {
		params[key] = rawToString(value)
	}

	if err := h.paymentService.HandleMomoCallback(c.Request.Context(), params); err != nil {
		h.logger.WithError(err).Warn("momo callback failed")
		c.Status(http.StatusBadRequest)
		return
	}

	c.Status(http.StatusNoContent)
}

// VnpayReturn handles the browser redirect back from VNPay.
// GET /api/v1/payments/vnpay/return
func (h *PaymentHandler) VnpayReturn(c *gin.Context) {
	params := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	payment, err := h.paymentService.HandleVnpayReturn(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment processed", payment)
}

// VerifyPayment reports the payment state for one of the user's orders.
// GET /api/v1/payments/verify/:orderId
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	orderID, err := primitive.ObjectIDFromHex(c.Param("orderId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID")
		return
	}

	payment, err := h.paymentService.VerifyPayment(c.Request.Context(), orderID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment retrieved successfully", payment)
}

// ListPayments lists every payment for back-office staff.
// GET /api/v1/admin/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	payments, total, err := h.paymentService.ListPayments(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	meta := &utils.Meta{Pagination: utils.CreatePaginationMeta(params, total)}
	utils.SuccessResponseWithMeta(c, "Payments retrieved successfully", payments, meta)
}

// RefundPayment refunds a completed payment.
// POST /api/v1/admin/payments/:id/refund
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	paymentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid payment ID")
		return
	}

	var request validators.RefundPaymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if errs := validators.ValidateRefundPayment(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	payment, err := h.paymentService.RefundPayment(c.Request.Context(), paymentID, request.Amount, request.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment refunded successfully", payment)
}

// rawToString renders a JSON value the way the gateway signed it: strings
// unquoted, numbers verbatim, everything else as compact JSON.
func rawToString(raw json.RawMessage) string {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return num.String()
	}

	var value interface{}
	if err := json.Unmarshal(raw, &value); err == nil {
		return fmt.Sprintf("%v", value)
	}

	return string(raw)
}
