package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCouponRedemption marks that a rule already fired for a user. A unique
// (user_id, rule_id) index keeps concurrent evaluations from minting twice.
type UserCouponRedemption struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID       primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	RuleID       primitive.ObjectID `json:"rule_id" bson:"rule_id" validate:"required"`
	CouponID     primitive.ObjectID `json:"coupon_id" bson:"coupon_id" validate:"required"`
	TriggerValue float64            `json:"trigger_value" bson:"trigger_value"`
	RedeemedAt   time.Time          `json:"redeemed_at" bson:"redeemed_at"`
}
