package config

type PaymentConfig struct {
	Momo         *MomoConfig         `yaml:"momo"`
	Vnpay        *VnpayConfig        `yaml:"vnpay"`
	BankTransfer *BankTransferConfig `yaml:"bank_transfer"`
	Currency     string              `yaml:"currency"`
}

type MomoConfig struct {
	PartnerCode string `yaml:"partner_code"`
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
	Endpoint    string `yaml:"endpoint"`
	RedirectURL string `yaml:"redirect_url"`
	IPNURL      string `yaml:"ipn_url"`
}

type VnpayConfig struct {
	TmnCode    string `yaml:"tmn_code"`
	HashSecret string `yaml:"hash_secret"`
	PayURL     string `yaml:"pay_url"`
	ReturnURL  string `yaml:"return_url"`
	Locale     string `yaml:"locale"`
}

type BankTransferConfig struct {
	BankName      string `yaml:"bank_name"`
	AccountNumber string `yaml:"account_number"`
	AccountHolder string `yaml:"account_holder"`
}

func loadPaymentConfig() *PaymentConfig {
	return &PaymentConfig{
		Momo: &MomoConfig{
			PartnerCode: getEnv("MOMO_PARTNER_CODE", ""),
			AccessKey:   getEnv("MOMO_ACCESS_KEY", ""),
			SecretKey:   getEnv("MOMO_SECRET_KEY", ""),
			Endpoint:    getEnv("MOMO_ENDPOINT", "https://test-payment.momo.vn/v2/gateway/api/create"),
			RedirectURL: getEnv("MOMO_REDIRECT_URL", "http://localhost:8080/api/v1/payments/momo/return"),
			IPNURL:      getEnv("MOMO_IPN_URL", "http://localhost:8080/api/v1/payments/momo/callback"),
		},
		Vnpay: &VnpayConfig{
			TmnCode:    getEnv("VNPAY_TMN_CODE", ""),
			HashSecret: getEnv("VNPAY_HASH_SECRET", ""),
			PayURL:     getEnv("VNPAY_PAY_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
			ReturnURL:  getEnv("VNPAY_RETURN_URL", "http://localhost:8080/api/v1/payments/vnpay/return"),
			Locale:     getEnv("VNPAY_LOCALE", "vn"),
		},
		BankTransfer: &BankTransferConfig{
			BankName:      getEnv("BANK_TRANSFER_BANK", "Vietcombank"),
			AccountNumber: getEnv("BANK_TRANSFER_ACCOUNT", ""),
			AccountHolder: getEnv("BANK_TRANSFER_HOLDER", ""),
		},
		Currency: getEnv("PAYMENT_CURRENCY", "VND"),
	}
}
