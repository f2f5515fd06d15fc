package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string
type OrderPaymentStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipping   OrderStatus = "shipping"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"

	OrderPaymentStatusPending  OrderPaymentStatus = "pending"
	OrderPaymentStatusPaid     OrderPaymentStatus = "paid"
	OrderPaymentStatusFailed   OrderPaymentStatus = "failed"
	OrderPaymentStatusRefunded OrderPaymentStatus = "refunded"
)

// OrderItem is a snapshot of the product line at the time the order was
// placed. Later catalog edits never change an existing order.
type OrderItem struct {
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id" validate:"required"`
	VariantID primitive.ObjectID `json:"variant_id" bson:"variant_id" validate:"required"`
	Name      string             `json:"name" bson:"name"`
	SKU       string             `json:"sku" bson:"sku"`
	Image     string             `json:"image" bson:"image"`
	UnitPrice float64            `json:"unit_price" bson:"unit_price" validate:"required"`
	Quantity  int                `json:"quantity" bson:"quantity" validate:"required,min=1"`
}

type ShippingAddress struct {
	FullName string `json:"full_name" bson:"full_name" validate:"required"`
	Phone    string `json:"phone" bson:"phone" validate:"required"`
	Street   string `json:"street" bson:"street" validate:"required"`
	Ward     string `json:"ward" bson:"ward"`
	District string `json:"district" bson:"district"`
	City     string `json:"city" bson:"city" validate:"required"`
}

type Order struct {
	ID                 primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	OrderCode          string              `json:"order_code" bson:"order_code" validate:"required"`
	UserID             primitive.ObjectID  `json:"user_id" bson:"user_id" validate:"required"`
	Items              []OrderItem         `json:"items" bson:"items" validate:"required,min=1,dive"`
	Subtotal           float64             `json:"subtotal" bson:"subtotal"`
	ShippingFee        float64             `json:"shipping_fee" bson:"shipping_fee" default:"0"`
	DiscountAmount     float64             `json:"discount_amount" bson:"discount_amount" default:"0"`
	TotalAmount        float64             `json:"total_amount" bson:"total_amount"`
	ShippingAddress    ShippingAddress     `json:"shipping_address" bson:"shipping_address" validate:"required"`
	Note               string              `json:"note" bson:"note"`
	Status             OrderStatus         `json:"status" bson:"status" default:"pending"`
	PaymentMethod      PaymentMethod       `json:"payment_method" bson:"payment_method" validate:"required"`
	PaymentStatus      OrderPaymentStatus  `json:"payment_status" bson:"payment_status" default:"pending"`
	CouponID           *primitive.ObjectID `json:"coupon_id" bson:"coupon_id"`
	CouponCode         string              `json:"coupon_code" bson:"coupon_code"`
	TrackingNumber     string              `json:"tracking_number" bson:"tracking_number"`
	ConfirmedAt        *time.Time          `json:"confirmed_at" bson:"confirmed_at"`
	ShippingAt         *time.Time          `json:"shipping_at" bson:"shipping_at"`
	DeliveredAt        *time.Time          `json:"delivered_at" bson:"delivered_at"`
	CancelledAt        *time.Time          `json:"cancelled_at" bson:"cancelled_at"`
	CancellationReason string              `json:"cancellation_reason" bson:"cancellation_reason"`
	CreatedAt          time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at" bson:"updated_at"`
}
