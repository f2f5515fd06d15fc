package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string
type PaymentMethod string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"

	PaymentMethodCOD          PaymentMethod = "cod"
	PaymentMethodMomo         PaymentMethod = "momo"
	PaymentMethodVnpay        PaymentMethod = "vnpay"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// IsTerminal reports whether no further gateway callback may change the payment.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed || s == PaymentStatusRefunded
}

type Payment struct {
	ID              primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	OrderID         primitive.ObjectID     `json:"order_id" bson:"order_id" validate:"required"`
	OrderCode       string                 `json:"order_code" bson:"order_code" validate:"required"`
	UserID          primitive.ObjectID     `json:"user_id" bson:"user_id" validate:"required"`
	Method          PaymentMethod          `json:"method" bson:"method" validate:"required"`
	Status          PaymentStatus          `json:"status" bson:"status" default:"pending"`
	Amount          float64                `json:"amount" bson:"amount" validate:"required"`
	Currency        string                 `json:"currency" bson:"currency" default:"VND"`
	RequestID       string                 `json:"request_id" bson:"request_id"`
	TransactionID   string                 `json:"transaction_id" bson:"transaction_id"`
	PayURL          string                 `json:"pay_url" bson:"pay_url"`
	FailureReason   string                 `json:"failure_reason" bson:"failure_reason"`
	RefundAmount    float64                `json:"refund_amount" bson:"refund_amount" default:"0"`
	RefundReason    string                 `json:"refund_reason" bson:"refund_reason"`
	GatewayResponse map[string]interface{} `json:"gateway_response" bson:"gateway_response"`
	ExpiresAt       time.Time              `json:"expires_at" bson:"expires_at"`
	ProcessedAt     *time.Time             `json:"processed_at" bson:"processed_at"`
	FailedAt        *time.Time             `json:"failed_at" bson:"failed_at"`
	RefundedAt      *time.Time             `json:"refunded_at" bson:"refunded_at"`
	CreatedAt       time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at" bson:"updated_at"`
}
