package validators

type CreatePaymentRequest struct {
	OrderID string `json:"order_id" validate:"required,object_id"`
}

type RefundPaymentRequest struct {
	Amount float64 `json:"amount" validate:"omitempty,gte=0,vnd_amount"`
	Reason string  `json:"reason" validate:"required,min=3,max=255"`
}

func ValidateCreatePayment(req *CreatePaymentRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateRefundPayment(req *RefundPaymentRequest) ValidationErrors {
	return ValidateStruct(req)
}
