package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TriggerType string

const (
	TriggerTypeOrderCount TriggerType = "order_count"
	TriggerTypeTotalSpent TriggerType = "total_spent"
	TriggerTypeFirstOrder TriggerType = "first_order"
)

// CouponTemplate describes the coupon an auto rule mints when a user
// crosses its threshold.
type CouponTemplate struct {
	Prefix            string       `json:"prefix" bson:"prefix" validate:"required"`
	DiscountType      DiscountType `json:"discount_type" bson:"discount_type" validate:"required"`
	DiscountValue     float64      `json:"discount_value" bson:"discount_value" validate:"required"`
	MaxDiscountAmount float64      `json:"max_discount_amount" bson:"max_discount_amount"`
	MinOrderValue     float64      `json:"min_order_value" bson:"min_order_value"`
	ValidDays         int          `json:"valid_days" bson:"valid_days" validate:"required,min=1"`
	UsageLimit        int          `json:"usage_limit" bson:"usage_limit" default:"1"`
	UsageLimitPerUser int          `json:"usage_limit_per_user" bson:"usage_limit_per_user" default:"1"`
}

type AutoCouponRule struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name" validate:"required"`
	TriggerType     TriggerType        `json:"trigger_type" bson:"trigger_type" validate:"required"`
	Threshold       float64            `json:"threshold" bson:"threshold"`
	Template        CouponTemplate     `json:"template" bson:"template" validate:"required"`
	MaxRedemptions  int                `json:"max_redemptions" bson:"max_redemptions"`
	RedemptionCount int                `json:"redemption_count" bson:"redemption_count" default:"0"`
	IsActive        bool               `json:"is_active" bson:"is_active" default:"true"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}
