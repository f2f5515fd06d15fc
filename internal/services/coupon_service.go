package services

import (
	"context"
	"fmt"
	"time"

	"goshop/internal/models"
	"goshop/internal/repositories/interfaces"
	"goshop/internal/utils"
	"goshop/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CouponService is the coupon ledger: side-effect-free validation plus the
// usage mutations the order state machine drives after an order persists.
type CouponService interface {
	// ValidateAndPrice runs every eligibility check in order and computes the
	// discount. It never mutates state, so callers may retry freely.
	ValidateAndPrice(ctx context.Context, code string, userID primitive.ObjectID, subtotal float64, items []models.OrderItem) (*CouponPricing, error)

	// Apply records a redemption: bump the coupon counter and write the
	// per-user ledger entry.
	Apply(ctx context.Context, couponID, userID, orderID primitive.ObjectID, discountAmount float64) error

	// Reverse undoes a redemption when its order is cancelled.
	Reverse(ctx context.Context, orderID primitive.ObjectID) error

	// Admin management
	CreateCoupon(ctx context.Context, request *CreateCouponRequest) (*models.Coupon, error)
	ListCoupons(ctx context.Context, params *utils.PaginationParams) ([]*models.Coupon, int64, error)
}

type CouponPricing struct {
	Coupon         *models.Coupon `json:"coupon"`
	DiscountAmount float64        `json:"discount_amount"`
}

type CreateCouponRequest struct {
	Code                 string               `json:"code" validate:"required,min=3,max=30"`
	Description          string               `json:"description" validate:"max=255"`
	DiscountType         models.DiscountType  `json:"discount_type" validate:"required,oneof=percentage fixed_amount"`
	DiscountValue        float64              `json:"discount_value" validate:"required,gt=0"`
	MaxDiscountAmount    float64              `json:"max_discount_amount" validate:"omitempty,gte=0"`
	MinOrderValue        float64              `json:"min_order_value" validate:"omitempty,gte=0"`
	UsageLimit           int                  `json:"usage_limit" validate:"omitempty,gte=0"`
	UsageLimitPerUser    int                  `json:"usage_limit_per_user" validate:"omitempty,gte=0"`
	ApplicableUsers      []primitive.ObjectID `json:"applicable_users"`
	ExcludedUsers        []primitive.ObjectID `json:"excluded_users"`
	ApplicableProducts   []primitive.ObjectID `json:"applicable_products"`
	ApplicableCategories []primitive.ObjectID `json:"applicable_categories"`
	ApplicableBrands     []primitive.ObjectID `json:"applicable_brands"`
	StartDate            time.Time            `json:"start_date"`
	EndDate              time.Time            `json:"end_date" validate:"required"`
}

type couponService struct {
	couponRepo  interfaces.CouponRepository
	usageRepo   interfaces.CouponUsageRepository
	productRepo interfaces.ProductRepository
	logger      *logger.Logger
}

func NewCouponService(
	couponRepo interfaces.CouponRepository,
	usageRepo interfaces.CouponUsageRepository,
	productRepo interfaces.ProductRepository,
	log *logger.Logger,
) CouponService {
	return &couponService{
		couponRepo:  couponRepo,
		usageRepo:   usageRepo,
		productRepo: productRepo,
		logger:      log,
	}
}

func (s *couponService) ValidateAndPrice(ctx context.Context, code string, userID primitive.ObjectID, subtotal float64, items []models.OrderItem) (*CouponPricing, error) {
	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	now := time.Now()
	if !coupon.IsActive {
		return nil, ErrCouponInactive
	}
	if now.Before(coupon.StartDate) || now.After(coupon.EndDate) {
		return nil, ErrCouponExpired
	}

	if coupon.UsageLimit > 0 && coupon.UsageCount >= coupon.UsageLimit {
		return nil, ErrCouponLimitReached
	}

	if coupon.UsageLimitPerUser > 0 {
		used, err := s.usageRepo.CountByUserAndCoupon(ctx, userID, coupon.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count user coupon usage: %w", err)
		}
		if used >= int64(coupon.UsageLimitPerUser) {
			return nil, ErrCouponUserLimit
		}
	}

	if len(coupon.ApplicableUsers) > 0 && !containsID(coupon.ApplicableUsers, userID) {
		return nil, ErrCouponNotEligible
	}
	if containsID(coupon.ExcludedUsers, userID) {
		return nil, ErrCouponNotEligible
	}

	if subtotal < coupon.MinOrderValue {
		return nil, ErrCouponMinOrder
	}

	if s.hasItemRestrictions(coupon) {
		matched, err := s.anyItemMatches(ctx, coupon, items)
		if err != nil {
			return nil, err
		}
		if !matched {
			return nil, ErrCouponNotApplicable
		}
	}

	discount := s.computeDiscount(coupon, subtotal)

	return &CouponPricing{
		Coupon:         coupon,
		DiscountAmount: discount,
	}, nil
}

func (s *couponService) computeDiscount(coupon *models.Coupon, subtotal float64) float64 {
	var discount float64
	switch coupon.DiscountType {
	case models.DiscountTypePercentage:
		discount = subtotal * coupon.DiscountValue / 100
		if coupon.MaxDiscountAmount > 0 && discount > coupon.MaxDiscountAmount {
			discount = coupon.MaxDiscountAmount
		}
	case models.DiscountTypeFixedAmount:
		// A fixed discount never exceeds the subtotal; totals stay >= 0.
		discount = coupon.DiscountValue
		if discount > subtotal {
			discount = subtotal
		}
	}

	return discount
}

func (s *couponService) hasItemRestrictions(coupon *models.Coupon) bool {
	return len(coupon.ApplicableProducts) > 0 ||
		len(coupon.ApplicableCategories) > 0 ||
		len(coupon.ApplicableBrands) > 0
}

// anyItemMatches reports whether at least one order line falls under the
// coupon's product/category/brand restrictions. Category and brand checks
// need the catalog document for each line.
func (s *couponService) anyItemMatches(ctx context.Context, coupon *models.Coupon, items []models.OrderItem) (bool, error) {
	for _, item := range items {
		if containsID(coupon.ApplicableProducts, item.ProductID) {
			return true, nil
		}

		if len(coupon.ApplicableCategories) == 0 && len(coupon.ApplicableBrands) == 0 {
			continue
		}

		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return false, fmt.Errorf("failed to load product for coupon check: %w", err)
		}
		if product == nil {
			continue
		}
		if containsID(coupon.ApplicableCategories, product.CategoryID) {
			return true, nil
		}
		if containsID(coupon.ApplicableBrands, product.BrandID) {
			return true, nil
		}
	}

	return false, nil
}

func (s *couponService) Apply(ctx context.Context, couponID, userID, orderID primitive.ObjectID, discountAmount float64) error {
	if err := s.couponRepo.IncrementUsage(ctx, couponID, 1); err != nil {
		return err
	}

	usage := &models.UserCouponUsage{
		UserID:         userID,
		CouponID:       couponID,
		OrderID:        orderID,
		DiscountAmount: discountAmount,
	}
	if err := s.usageRepo.Create(ctx, usage); err != nil {
		// Roll the counter back so the ledger and counter stay in step.
		if rbErr := s.couponRepo.IncrementUsage(ctx, couponID, -1); rbErr != nil {
			s.logger.WithError(rbErr).Error("failed to roll back coupon usage counter")
		}
		return err
	}

	return nil
}

func (s *couponService) Reverse(ctx context.Context, orderID primitive.ObjectID) error {
	usage, err := s.usageRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if usage == nil {
		// No coupon on this order; nothing to reverse.
		return nil
	}

	if err := s.couponRepo.IncrementUsage(ctx, usage.CouponID, -1); err != nil {
		return err
	}
	if err := s.usageRepo.DeleteByOrderID(ctx, orderID); err != nil {
		return err
	}

	s.logger.WithOrderID(orderID).WithField("coupon_id", usage.CouponID.Hex()).Info("coupon usage reversed")

	return nil
}

func (s *couponService) CreateCoupon(ctx context.Context, request *CreateCouponRequest) (*models.Coupon, error) {
	startDate := request.StartDate
	if startDate.IsZero() {
		startDate = time.Now()
	}

	usageLimitPerUser := request.UsageLimitPerUser
	if usageLimitPerUser == 0 {
		usageLimitPerUser = 1
	}

	coupon := &models.Coupon{
		Code:                 request.Code,
		Description:          request.Description,
		DiscountType:         request.DiscountType,
		DiscountValue:        request.DiscountValue,
		MaxDiscountAmount:    request.MaxDiscountAmount,
		MinOrderValue:        request.MinOrderValue,
		UsageLimit:           request.UsageLimit,
		UsageLimitPerUser:    usageLimitPerUser,
		ApplicableUsers:      request.ApplicableUsers,
		ExcludedUsers:        request.ExcludedUsers,
		ApplicableProducts:   request.ApplicableProducts,
		ApplicableCategories: request.ApplicableCategories,
		ApplicableBrands:     request.ApplicableBrands,
		StartDate:            startDate,
		EndDate:              request.EndDate,
		IsActive:             true,
	}

	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		return nil, err
	}

	return coupon, nil
}

func (s *couponService) ListCoupons(ctx context.Context, params *utils.PaginationParams) ([]*models.Coupon, int64, error) {
	return s.couponRepo.GetAll(ctx, params)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
