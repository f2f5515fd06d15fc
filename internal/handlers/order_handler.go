package handlers

import (
	"goshop/internal/middleware"
	"goshop/internal/models"
	"goshop/internal/services"
	"goshop/internal/utils"
	"goshop/internal/validators"
	"goshop/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderHandler struct {
	orderService services.OrderService
	logger       *logger.Logger
}

func NewOrderHandler(orderService services.OrderService, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       log,
	}
}

// CreateOrder turns the authenticated user's cart into an order.
// POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request services.CreateOrderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if errs := validators.ValidateCreateOrder(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), userID, &request)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Order created successfully", order)
}

// GetOrder returns one of the authenticated user's orders.
// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetOrderForUser(c.Request.Context(), orderID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Order retrieved successfully", order)
}

// ListMyOrders returns the authenticated user's order history.
// GET /api/v1/orders
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)
	orders, total, err := h.orderService.ListOrdersForUser(c.Request.Context(), userID, params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	meta := &utils.Meta{Pagination: utils.CreatePaginationMeta(params, total)}
	utils.SuccessResponseWithMeta(c, "Orders retrieved successfully", orders, meta)
}

// CancelOrder cancels one of the authenticated user's orders.
// POST /api/v1/orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID")
		return
	}

	var request validators.CancelOrderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if errs := validators.ValidateCancelOrder(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), orderID, userID, request.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Order cancelled successfully", order)
}

// ListAllOrders lists every order for back-office staff.
// GET /api/v1/admin/orders
func (h *OrderHandler) ListAllOrders(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	orders, total, err := h.orderService.ListAllOrders(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	meta := &utils.Meta{Pagination: utils.CreatePaginationMeta(params, total)}
	utils.SuccessResponseWithMeta(c, "Orders retrieved successfully", orders, meta)
}

// GetOrderAdmin returns any order by id.
// GET /api/v1/admin/orders/:id
func (h *OrderHandler) GetOrderAdmin(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetOrderByID(c.Request.Context(), orderID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Order retrieved successfully", order)
}

// UpdateOrderStatus moves an order through its lifecycle.
// PUT /api/v1/admin/orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID")
		return
	}

	var request validators.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if errs := validators.ValidateUpdateOrderStatus(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), orderID, models.OrderStatus(request.Status), &services.TransitionOptions{
		TrackingNumber: request.TrackingNumber,
		Reason:         request.Reason,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Order status updated successfully", order)
}

// GetStatistics returns aggregate order counts and revenue.
// GET /api/v1/admin/orders/statistics
func (h *OrderHandler) GetStatistics(c *gin.Context) {
	stats, err := h.orderService.GetOrderStatistics(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Order statistics retrieved successfully", stats)
}
