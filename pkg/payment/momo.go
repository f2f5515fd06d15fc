package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// MomoProvider talks to the MoMo v2 gateway API. Requests and inbound IPNs
// are signed with HMAC-SHA256 over an alphabetically ordered key=value string.
type MomoProvider struct {
	partnerCode string
	accessKey   string
	secretKey   string
	endpoint    string
	redirectURL string
	ipnURL      string
	requestType string
	httpClient  *http.Client
}

func NewMomoProvider(partnerCode, accessKey, secretKey, endpoint, redirectURL, ipnURL, requestType string) *MomoProvider {
	return &MomoProvider{
		partnerCode: partnerCode,
		accessKey:   accessKey,
		secretKey:   secretKey,
		endpoint:    endpoint,
		redirectURL: redirectURL,
		ipnURL:      ipnURL,
		requestType: requestType,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

type momoCreateRequest struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IpnURL      string `json:"ipnUrl"`
	RequestType string `json:"requestType"`
	ExtraData   string `json:"extraData"`
	Lang        string `json:"lang"`
	Signature   string `json:"signature"`
}

type momoCreateResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
	QRCodeURL  string `json:"qrCodeUrl"`
	Deeplink   string `json:"deeplink"`
}

func (m *MomoProvider) CreateSession(ctx context.Context, request *SessionRequest) (*SessionResponse, error) {
	amount := int64(request.Amount)

	// Canonical create-request signature string; key order is fixed by the
	// MoMo API contract.
	raw := fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		m.accessKey, amount, request.ExtraData, m.ipnURL, request.OrderCode,
		request.OrderInfo, m.partnerCode, m.redirectURL, request.RequestID, m.requestType,
	)

	body := &momoCreateRequest{
		PartnerCode: m.partnerCode,
		RequestID:   request.RequestID,
		Amount:      amount,
		OrderID:     request.OrderCode,
		OrderInfo:   request.OrderInfo,
		RedirectURL: m.redirectURL,
		IpnURL:      m.ipnURL,
		RequestType: m.requestType,
		ExtraData:   request.ExtraData,
		Lang:        "vi",
		Signature:   m.sign(raw),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal momo request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build momo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("momo create payment call failed: %w", err)
	}
	defer resp.Body.Close()

	var result momoCreateResponse
	var rawResp map[string]interface{}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&rawResp); err != nil {
		return nil, fmt.Errorf("failed to decode momo response: %w", err)
	}
	remarshalled, _ := json.Marshal(rawResp)
	if err := json.Unmarshal(remarshalled, &result); err != nil {
		return nil, fmt.Errorf("failed to parse momo response: %w", err)
	}

	if result.ResultCode != 0 {
		return nil, &ProviderError{
			Provider: "momo",
			Code:     strconv.Itoa(result.ResultCode),
			Message:  result.Message,
		}
	}

	return &SessionResponse{
		PayURL:    result.PayURL,
		QRCodeURL: result.QRCodeURL,
		Deeplink:  result.Deeplink,
		Raw:       rawResp,
	}, nil
}

// VerifyCallback checks the IPN signature. The IPN canonical string covers
// the result fields, again in fixed alphabetical key order.
func (m *MomoProvider) VerifyCallback(ctx context.Context, params map[string]string) (*CallbackResult, error) {
	raw := fmt.Sprintf(
		"accessKey=%s&amount=%s&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%s&resultCode=%s&transId=%s",
		m.accessKey, params["amount"], params["extraData"], params["message"],
		params["orderId"], params["orderInfo"], params["orderType"], params["partnerCode"],
		params["payType"], params["requestId"], params["responseTime"],
		params["resultCode"], params["transId"],
	)

	expected := m.sign(raw)
	if !hmac.Equal([]byte(expected), []byte(params["signature"])) {
		return nil, ErrSignatureMismatch
	}

	amount, _ := strconv.ParseFloat(params["amount"], 64)

	rawMap := make(map[string]interface{}, len(params))
	for k, v := range params {
		rawMap[k] = v
	}

	return &CallbackResult{
		OrderCode:     params["orderId"],
		RequestID:     params["requestId"],
		TransactionID: params["transId"],
		Amount:        amount,
		Success:       params["resultCode"] == "0",
		ResultCode:    params["resultCode"],
		Message:       params["message"],
		Raw:           rawMap,
	}, nil
}

func (m *MomoProvider) sign(raw string) string {
	h := hmac.New(sha256.New, []byte(m.secretKey))
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}
