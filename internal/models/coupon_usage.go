package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCouponUsage is one ledger entry per successful redemption. It backs the
// per-user usage limit and is deleted when the order is cancelled.
type UserCouponUsage struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID         primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	CouponID       primitive.ObjectID `json:"coupon_id" bson:"coupon_id" validate:"required"`
	OrderID        primitive.ObjectID `json:"order_id" bson:"order_id" validate:"required"`
	DiscountAmount float64            `json:"discount_amount" bson:"discount_amount"`
	UsedAt         time.Time          `json:"used_at" bson:"used_at"`
}
