package services

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the order/payment/coupon services. Handlers map
// these onto HTTP status codes; everything else is treated as internal.
var (
	ErrCartEmpty            = errors.New("cart is empty")
	ErrOrderNotFound        = errors.New("order not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrVariantNotFound      = errors.New("product variant not found")
	ErrProductUnavailable   = errors.New("product is not available")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrInvalidTransition    = errors.New("invalid order status transition")
	ErrPaymentCompleted     = errors.New("payment already completed")
	ErrPaymentNotRefundable = errors.New("only completed payments can be refunded")
	ErrInvalidSignature     = errors.New("invalid gateway signature")
	ErrUnsupportedMethod    = errors.New("unsupported payment method")

	// Coupon rejection reasons, each distinct so the caller can tell the
	// shopper exactly why the code did not apply.
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponInactive      = errors.New("coupon is not active")
	ErrCouponExpired       = errors.New("coupon is expired or not yet valid")
	ErrCouponLimitReached  = errors.New("coupon usage limit reached")
	ErrCouponUserLimit     = errors.New("coupon usage limit per user reached")
	ErrCouponNotEligible   = errors.New("user is not eligible for this coupon")
	ErrCouponMinOrder      = errors.New("order does not meet coupon minimum value")
	ErrCouponNotApplicable = errors.New("coupon does not apply to any item in this order")
)

// GatewayError preserves the raw provider code and message for diagnostics.
type GatewayError struct {
	Provider string
	Code     string
	Message  string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s gateway error %s: %s", e.Provider, e.Code, e.Message)
}
