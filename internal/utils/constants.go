package utils

import "time"

// Application Constants
const (
	AppName    = "GoShop"
	AppVersion = "1.0.0"

	// Default values
	DefaultCurrency = "VND"
	DefaultTimeZone = "Asia/Ho_Chi_Minh"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Order Constants
	OrderCodePrefix  = "ORD"
	OrderCodeLength  = 8
	DefaultShipping  = 30000.0
	FreeShippingOver = 500000.0

	// Payment Constants
	PaymentSessionTTL = 15 * time.Minute
	MomoRequestType   = "captureWallet"
	VnpayVersion      = "2.1.0"

	// Coupon Constants
	CouponSuffixLength = 6

	// Response status
	StatusSuccess = "success"
	StatusError   = "error"

	// Response messages
	ErrValidationFailed = "Validation failed"
	ErrInternalServer   = "Internal server error"
	ErrUnauthorized     = "Unauthorized access"
	ErrForbidden        = "Access forbidden"
)
