package payment

import (
	"errors"
	"fmt"
)

// ErrSignatureMismatch means the callback HMAC did not verify. Callers must
// reject the callback outright; it may be forged.
var ErrSignatureMismatch = errors.New("callback signature mismatch")

// ProviderError carries the provider's own result code and message.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s returned %s: %s", e.Provider, e.Code, e.Message)
}
