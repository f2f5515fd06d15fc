package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// VnpayProvider builds VNPay redirect URLs and verifies return/IPN queries.
// VNPay is redirect-based: no outbound call is made at session creation. The
// signature is HMAC-SHA512 over the URL-encoded query with keys sorted
// lexically.
type VnpayProvider struct {
	tmnCode    string
	hashSecret string
	payURL     string
	returnURL  string
	locale     string
}

func NewVnpayProvider(tmnCode, hashSecret, payURL, returnURL, locale string) *VnpayProvider {
	if locale == "" {
		locale = "vn"
	}
	return &VnpayProvider{
		tmnCode:    tmnCode,
		hashSecret: hashSecret,
		payURL:     payURL,
		returnURL:  returnURL,
		locale:     locale,
	}
}

func (v *VnpayProvider) CreateSession(ctx context.Context, request *SessionRequest) (*SessionResponse, error) {
	now := time.Now()

	params := map[string]string{
		"vnp_Version":    "2.1.0",
		"vnp_Command":    "pay",
		"vnp_TmnCode":    v.tmnCode,
		"vnp_Amount":     strconv.FormatInt(int64(request.Amount)*100, 10),
		"vnp_CurrCode":   "VND",
		"vnp_TxnRef":     request.OrderCode,
		"vnp_OrderInfo":  request.OrderInfo,
		"vnp_OrderType":  "other",
		"vnp_Locale":     v.locale,
		"vnp_ReturnUrl":  v.returnURL,
		"vnp_IpAddr":     request.ClientIP,
		"vnp_CreateDate": now.Format("20060102150405"),
		"vnp_ExpireDate": now.Add(15 * time.Minute).Format("20060102150405"),
	}

	query := encodeSorted(params)
	secureHash := v.sign(query)
	payURL := fmt.Sprintf("%s?%s&vnp_SecureHash=%s", v.payURL, query, secureHash)

	raw := make(map[string]interface{}, len(params))
	for k, val := range params {
		raw[k] = val
	}

	return &SessionResponse{
		PayURL: payURL,
		Raw:    raw,
	}, nil
}

// VerifyCallback validates a return/IPN query. The hash covers every vnp_
// parameter except the hash fields themselves.
func (v *VnpayProvider) VerifyCallback(ctx context.Context, params map[string]string) (*CallbackResult, error) {
	received := params["vnp_SecureHash"]

	signed := make(map[string]string, len(params))
	for k, val := range params {
		if k == "vnp_SecureHash" || k == "vnp_SecureHashType" {
			continue
		}
		if strings.HasPrefix(k, "vnp_") {
			signed[k] = val
		}
	}

	expected := v.sign(encodeSorted(signed))
	if !hmac.Equal([]byte(expected), []byte(received)) {
		return nil, ErrSignatureMismatch
	}

	// vnp_Amount is in hundredths of a dong
	amount, _ := strconv.ParseFloat(params["vnp_Amount"], 64)
	amount /= 100

	rawMap := make(map[string]interface{}, len(params))
	for k, val := range params {
		rawMap[k] = val
	}

	responseCode := params["vnp_ResponseCode"]

	return &CallbackResult{
		OrderCode:     params["vnp_TxnRef"],
		TransactionID: params["vnp_TransactionNo"],
		Amount:        amount,
		Success:       responseCode == "00",
		ResultCode:    responseCode,
		Message:       vnpayMessage(responseCode),
		Raw:           rawMap,
	}, nil
}

func (v *VnpayProvider) sign(query string) string {
	h := hmac.New(sha512.New, []byte(v.hashSecret))
	h.Write([]byte(query))
	return hex.EncodeToString(h.Sum(nil))
}

// encodeSorted URL-encodes params with lexically sorted keys, matching the
// string VNPay hashes on their side.
func encodeSorted(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}

	return b.String()
}

func vnpayMessage(code string) string {
	switch code {
	case "00":
		return "Giao dich thanh cong"
	case "24":
		return "Khach hang huy giao dich"
	case "51":
		return "Tai khoan khong du so du"
	case "65":
		return "Tai khoan vuot han muc giao dich trong ngay"
	default:
		return "Giao dich khong thanh cong"
	}
}
