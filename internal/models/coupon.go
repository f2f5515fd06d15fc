package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "percentage"
	DiscountTypeFixedAmount DiscountType = "fixed_amount"
)

type Coupon struct {
	ID                   primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Code                 string               `json:"code" bson:"code" validate:"required"`
	Description          string               `json:"description" bson:"description"`
	DiscountType         DiscountType         `json:"discount_type" bson:"discount_type" validate:"required"`
	DiscountValue        float64              `json:"discount_value" bson:"discount_value" validate:"required"`
	MaxDiscountAmount    float64              `json:"max_discount_amount" bson:"max_discount_amount"`
	MinOrderValue        float64              `json:"min_order_value" bson:"min_order_value"`
	UsageLimit           int                  `json:"usage_limit" bson:"usage_limit"`
	UsageLimitPerUser    int                  `json:"usage_limit_per_user" bson:"usage_limit_per_user" default:"1"`
	UsageCount           int                  `json:"usage_count" bson:"usage_count" default:"0"`
	ApplicableUsers      []primitive.ObjectID `json:"applicable_users" bson:"applicable_users"`
	ExcludedUsers        []primitive.ObjectID `json:"excluded_users" bson:"excluded_users"`
	ApplicableProducts   []primitive.ObjectID `json:"applicable_products" bson:"applicable_products"`
	ApplicableCategories []primitive.ObjectID `json:"applicable_categories" bson:"applicable_categories"`
	ApplicableBrands     []primitive.ObjectID `json:"applicable_brands" bson:"applicable_brands"`
	StartDate            time.Time            `json:"start_date" bson:"start_date"`
	EndDate              time.Time            `json:"end_date" bson:"end_date"`
	IsActive             bool                 `json:"is_active" bson:"is_active" default:"true"`
	AutoRuleID           *primitive.ObjectID  `json:"auto_rule_id" bson:"auto_rule_id"`
	CreatedAt            time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at" bson:"updated_at"`
}
