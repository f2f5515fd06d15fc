package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const (
	letterBytes  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	numberBytes  = "0123456789"
	alphanumeric = letterBytes + numberBytes
)

func GenerateRandomString(length int) string {
	return generateRandom(length, alphanumeric)
}

func GenerateRandomNumericString(length int) string {
	return generateRandom(length, numberBytes)
}

func generateRandom(length int, charset string) string {
	result := make([]byte, length)
	charsetLength := big.NewInt(int64(len(charset)))

	for i := range result {
		num, _ := rand.Int(rand.Reader, charsetLength)
		result[i] = charset[num.Int64()]
	}

	return string(result)
}

// GenerateOrderCode builds the human-readable order code, e.g. ORD240901AB12CD34.
func GenerateOrderCode() string {
	suffix := strings.ToUpper(GenerateRandomString(OrderCodeLength))
	return fmt.Sprintf("%s%s%s", OrderCodePrefix, time.Now().Format("060102"), suffix)
}

// GenerateCouponCode builds a coupon code from an auto-rule prefix plus a
// random and a time suffix to keep collisions out of the unique code index.
func GenerateCouponCode(prefix string) string {
	suffix := strings.ToUpper(GenerateRandomString(CouponSuffixLength))
	return fmt.Sprintf("%s%s%d", strings.ToUpper(prefix), suffix, time.Now().Unix()%100000)
}
