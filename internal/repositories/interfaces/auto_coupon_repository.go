package interfaces

import (
	"context"

	"goshop/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AutoCouponRuleRepository interface {
	Create(ctx context.Context, rule *models.AutoCouponRule) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.AutoCouponRule, error)
	GetActiveRules(ctx context.Context) ([]*models.AutoCouponRule, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	IncrementRedemptions(ctx context.Context, id primitive.ObjectID) error
}

type CouponRedemptionRepository interface {
	// Create fails with a duplicate-key error when a redemption for the same
	// (user, rule) pair already exists.
	Create(ctx context.Context, redemption *models.UserCouponRedemption) error
	Exists(ctx context.Context, userID, ruleID primitive.ObjectID) (bool, error)
}
