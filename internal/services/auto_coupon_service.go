package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"goshop/internal/models"
	"goshop/internal/repositories/interfaces"
	"goshop/internal/utils"
	"goshop/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AutoCouponService evaluates milestone rules and mints user-restricted
// coupons when a user crosses a threshold. It runs after payment
// confirmation, after COD delivery, and lazily when a user lists their
// coupons.
type AutoCouponService interface {
	// Evaluate checks every active rule for the user. One call may satisfy
	// several rules at once; each mints its own coupon.
	Evaluate(ctx context.Context, userID primitive.ObjectID) ([]*models.Coupon, error)

	// GetUserAutoCoupons re-evaluates and then returns the user's minted
	// coupons, so a missed trigger self-heals on read.
	GetUserAutoCoupons(ctx context.Context, userID primitive.ObjectID) ([]*models.Coupon, error)

	// Admin management
	CreateRule(ctx context.Context, request *CreateRuleRequest) (*models.AutoCouponRule, error)
	ListActiveRules(ctx context.Context) ([]*models.AutoCouponRule, error)
}

type CreateRuleRequest struct {
	Name           string                `json:"name" validate:"required,max=100"`
	TriggerType    models.TriggerType    `json:"trigger_type" validate:"required,oneof=order_count total_spent first_order"`
	Threshold      float64               `json:"threshold" validate:"omitempty,gte=0"`
	Template       models.CouponTemplate `json:"template" validate:"required"`
	MaxRedemptions int                   `json:"max_redemptions" validate:"omitempty,gte=0"`
}

type autoCouponService struct {
	ruleRepo       interfaces.AutoCouponRuleRepository
	redemptionRepo interfaces.CouponRedemptionRepository
	couponRepo     interfaces.CouponRepository
	orderRepo      interfaces.OrderRepository
	logger         *logger.Logger
}

func NewAutoCouponService(
	ruleRepo interfaces.AutoCouponRuleRepository,
	redemptionRepo interfaces.CouponRedemptionRepository,
	couponRepo interfaces.CouponRepository,
	orderRepo interfaces.OrderRepository,
	log *logger.Logger,
) AutoCouponService {
	return &autoCouponService{
		ruleRepo:       ruleRepo,
		redemptionRepo: redemptionRepo,
		couponRepo:     couponRepo,
		orderRepo:      orderRepo,
		logger:         log,
	}
}

func (s *autoCouponService) Evaluate(ctx context.Context, userID primitive.ObjectID) ([]*models.Coupon, error) {
	rules, err := s.ruleRepo.GetActiveRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active rules: %w", err)
	}

	var minted []*models.Coupon
	for _, rule := range rules {
		coupon, err := s.evaluateRule(ctx, rule, userID)
		if err != nil {
			// One broken rule must not block the rest.
			s.logger.WithError(err).WithUserID(userID).
				WithField("rule_id", rule.ID.Hex()).Warn("auto coupon rule evaluation failed")
			continue
		}
		if coupon != nil {
			minted = append(minted, coupon)
		}
	}

	return minted, nil
}

func (s *autoCouponService) evaluateRule(ctx context.Context, rule *models.AutoCouponRule, userID primitive.ObjectID) (*models.Coupon, error) {
	redeemed, err := s.redemptionRepo.Exists(ctx, userID, rule.ID)
	if err != nil {
		return nil, err
	}
	if redeemed {
		return nil, nil
	}

	if rule.MaxRedemptions > 0 && rule.RedemptionCount >= rule.MaxRedemptions {
		return nil, nil
	}

	value, satisfied, err := s.triggerMetric(ctx, rule, userID)
	if err != nil {
		return nil, err
	}
	if !satisfied {
		return nil, nil
	}

	coupon := s.couponFromTemplate(rule, userID)
	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		return nil, fmt.Errorf("failed to mint coupon: %w", err)
	}

	redemption := &models.UserCouponRedemption{
		UserID:       userID,
		RuleID:       rule.ID,
		CouponID:     coupon.ID,
		TriggerValue: value,
	}
	if err := s.redemptionRepo.Create(ctx, redemption); err != nil {
		// A concurrent evaluation won the race on the unique (user,rule)
		// index. Deactivate our duplicate coupon and report no mint.
		if updErr := s.couponRepo.Update(ctx, coupon.ID, map[string]interface{}{"is_active": false}); updErr != nil {
			s.logger.WithError(updErr).Warn("failed to deactivate duplicate auto coupon")
		}
		return nil, nil
	}

	if err := s.ruleRepo.IncrementRedemptions(ctx, rule.ID); err != nil {
		s.logger.WithError(err).WithField("rule_id", rule.ID.Hex()).Warn("failed to bump rule redemption count")
	}

	s.logger.WithUserID(userID).WithFields(map[string]interface{}{
		"rule_id":     rule.ID.Hex(),
		"coupon_code": coupon.Code,
	}).Info("auto coupon issued")

	return coupon, nil
}

func (s *autoCouponService) triggerMetric(ctx context.Context, rule *models.AutoCouponRule, userID primitive.ObjectID) (float64, bool, error) {
	switch rule.TriggerType {
	case models.TriggerTypeOrderCount:
		count, err := s.orderRepo.CountQualifyingOrders(ctx, userID)
		if err != nil {
			return 0, false, err
		}
		return float64(count), float64(count) >= rule.Threshold, nil

	case models.TriggerTypeTotalSpent:
		total, err := s.orderRepo.SumPaidAmount(ctx, userID)
		if err != nil {
			return 0, false, err
		}
		return total, total >= rule.Threshold, nil

	case models.TriggerTypeFirstOrder:
		count, err := s.orderRepo.CountQualifyingOrders(ctx, userID)
		if err != nil {
			return 0, false, err
		}
		return float64(count), count == 1, nil

	default:
		return 0, false, fmt.Errorf("unknown trigger type %q", rule.TriggerType)
	}
}

func (s *autoCouponService) couponFromTemplate(rule *models.AutoCouponRule, userID primitive.ObjectID) *models.Coupon {
	now := time.Now()
	tpl := rule.Template

	usageLimit := tpl.UsageLimit
	if usageLimit == 0 {
		usageLimit = 1
	}
	usageLimitPerUser := tpl.UsageLimitPerUser
	if usageLimitPerUser == 0 {
		usageLimitPerUser = 1
	}

	return &models.Coupon{
		Code:              utils.GenerateCouponCode(tpl.Prefix),
		Description:       fmt.Sprintf("Reward for milestone: %s", strings.ToLower(rule.Name)),
		DiscountType:      tpl.DiscountType,
		DiscountValue:     tpl.DiscountValue,
		MaxDiscountAmount: tpl.MaxDiscountAmount,
		MinOrderValue:     tpl.MinOrderValue,
		UsageLimit:        usageLimit,
		UsageLimitPerUser: usageLimitPerUser,
		ApplicableUsers:   []primitive.ObjectID{userID},
		StartDate:         now,
		EndDate:           now.AddDate(0, 0, tpl.ValidDays),
		IsActive:          true,
		AutoRuleID:        &rule.ID,
	}
}

func (s *autoCouponService) GetUserAutoCoupons(ctx context.Context, userID primitive.ObjectID) ([]*models.Coupon, error) {
	// Self-healing read: catch up on any trigger missed at write time.
	if _, err := s.Evaluate(ctx, userID); err != nil {
		s.logger.WithError(err).WithUserID(userID).Warn("lazy auto coupon evaluation failed")
	}

	return s.couponRepo.GetByApplicableUser(ctx, userID)
}

func (s *autoCouponService) CreateRule(ctx context.Context, request *CreateRuleRequest) (*models.AutoCouponRule, error) {
	threshold := request.Threshold
	if request.TriggerType == models.TriggerTypeFirstOrder {
		threshold = 1
	}

	rule := &models.AutoCouponRule{
		Name:           request.Name,
		TriggerType:    request.TriggerType,
		Threshold:      threshold,
		Template:       request.Template,
		MaxRedemptions: request.MaxRedemptions,
		IsActive:       true,
	}

	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}

	return rule, nil
}

func (s *autoCouponService) ListActiveRules(ctx context.Context) ([]*models.AutoCouponRule, error) {
	return s.ruleRepo.GetActiveRules(ctx)
}
