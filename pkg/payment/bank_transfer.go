package payment

import (
	"context"
	"fmt"
)

// BankTransferProvider is a no-gateway method: it returns static transfer
// instructions keyed by the order code. Reconciliation happens manually.
type BankTransferProvider struct {
	bankName      string
	accountNumber string
	accountHolder string
}

func NewBankTransferProvider(bankName, accountNumber, accountHolder string) *BankTransferProvider {
	return &BankTransferProvider{
		bankName:      bankName,
		accountNumber: accountNumber,
		accountHolder: accountHolder,
	}
}

func (b *BankTransferProvider) CreateSession(ctx context.Context, request *SessionRequest) (*SessionResponse, error) {
	return &SessionResponse{
		Raw: map[string]interface{}{
			"bank_name":      b.bankName,
			"account_number": b.accountNumber,
			"account_holder": b.accountHolder,
			"amount":         request.Amount,
			"transfer_note":  fmt.Sprintf("Thanh toan don hang %s", request.OrderCode),
		},
	}, nil
}

// VerifyCallback never applies: bank transfers have no gateway callbacks.
func (b *BankTransferProvider) VerifyCallback(ctx context.Context, params map[string]string) (*CallbackResult, error) {
	return nil, fmt.Errorf("bank transfer has no gateway callback")
}
