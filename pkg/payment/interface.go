package payment

import (
	"context"
)

// GatewayProvider creates provider-side payment sessions and verifies the
// signed callbacks they send back. One implementation per provider.
type GatewayProvider interface {
	// CreateSession builds the provider request, signs it, and returns where
	// the shopper should be sent to pay. Redirect-based providers never leave
	// the process; wallet providers call the provider API.
	CreateSession(ctx context.Context, request *SessionRequest) (*SessionResponse, error)

	// VerifyCallback recomputes the callback signature over the provider's
	// canonical field set and maps the provider result code. It must not
	// mutate anything; signature failures return an error.
	VerifyCallback(ctx context.Context, params map[string]string) (*CallbackResult, error)
}

type SessionRequest struct {
	OrderCode string  `json:"order_code"`
	RequestID string  `json:"request_id"`
	Amount    float64 `json:"amount"`
	OrderInfo string  `json:"order_info"`
	ClientIP  string  `json:"client_ip"`
	ExtraData string  `json:"extra_data"`
}

type SessionResponse struct {
	PayURL    string                 `json:"pay_url"`
	QRCodeURL string                 `json:"qr_code_url,omitempty"`
	Deeplink  string                 `json:"deeplink,omitempty"`
	Raw       map[string]interface{} `json:"raw,omitempty"`
}

type CallbackResult struct {
	OrderCode     string                 `json:"order_code"`
	RequestID     string                 `json:"request_id,omitempty"`
	TransactionID string                 `json:"transaction_id"`
	Amount        float64                `json:"amount"`
	Success       bool                   `json:"success"`
	ResultCode    string                 `json:"result_code"`
	Message       string                 `json:"message"`
	Raw           map[string]interface{} `json:"raw"`
}
