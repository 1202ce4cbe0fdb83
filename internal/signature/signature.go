package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verify reports whether received is the lowercase hex HMAC-SHA256 of body
// under secret. The hash is computed over the raw byte sequence, never over
// a re-serialized parse of it. Comparison is constant-time.
func Verify(body []byte, secret, received string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(received))
}

// VerifyCheckout checks the checkout signature the gateway hands to the
// browser after a successful payment. The signed message is
// "<orderID>|<paymentID>" keyed with the API key secret.
func VerifyCheckout(orderID, paymentID, secret, received string) bool {
	return Verify([]byte(orderID+"|"+paymentID), secret, received)
}

// Sign returns the lowercase hex HMAC-SHA256 of body under secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
