package handlers

import (
	"goshop/internal/middleware"
	"goshop/internal/services"
	"goshop/internal/utils"
	"goshop/internal/validators"
	"goshop/pkg/logger"

	"github.com/gin-gonic/gin"
)

type CouponHandler struct {
	couponService     services.CouponService
	autoCouponService services.AutoCouponService
	logger            *logger.Logger
}

func NewCouponHandler(couponService services.CouponService, autoCouponService services.AutoCouponService, log *logger.Logger) *CouponHandler {
	return &CouponHandler{
		couponService:     couponService,
		autoCouponService: autoCouponService,
		logger:            log,
	}
}

// GetMyCoupons returns the coupons minted for the authenticated user by the
// milestone rules, re-evaluating first so a missed trigger catches up.
// GET /api/v1/coupons/my
func (h *CouponHandler) GetMyCoupons(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	coupons, err := h.autoCouponService.GetUserAutoCoupons(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Coupons retrieved successfully", coupons)
}

// CreateCoupon creates a manually managed coupon.
// POST /api/v1/admin/coupons
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var request services.CreateCouponRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if errs := validators.ValidateCreateCoupon(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	coupon, err := h.couponService.CreateCoupon(c.Request.Context(), &request)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Coupon created successfully", coupon)
}

// ListCoupons lists every coupon for back-office staff.
// GET /api/v1/admin/coupons
func (h *CouponHandler) ListCoupons(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	coupons, total, err := h.couponService.ListCoupons(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	meta := &utils.Meta{Pagination: utils.CreatePaginationMeta(params, total)}
	utils.SuccessResponseWithMeta(c, "Coupons retrieved successfully", coupons, meta)
}

// CreateRule creates a milestone rule that mints coupons automatically.
// POST /api/v1/admin/coupon-rules
func (h *CouponHandler) CreateRule(c *gin.Context) {
	var request services.CreateRuleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if errs := validators.ValidateCreateRule(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	rule, err := h.autoCouponService.CreateRule(c.Request.Context(), &request)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Coupon rule created successfully", rule)
}

// ListRules lists the active milestone rules.
// GET /api/v1/admin/coupon-rules
func (h *CouponHandler) ListRules(c *gin.Context) {
	rules, err := h.autoCouponService.ListActiveRules(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Coupon rules retrieved successfully", rules)
}
