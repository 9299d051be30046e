package email

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// VerifyWebhookSignature checks a Resend webhook signature: HMAC-SHA256
// over the raw body, base64 encoded, compared in constant time.
func VerifyWebhookSignature(payload []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}

// WebhookEvent is the envelope Resend delivers for email lifecycle events.
type WebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		ID     string   `json:"id"`
		To     []string `json:"to"`
		Email  string   `json:"email"`
		Bounce *struct {
			Message string `json:"message"`
		} `json:"bounce,omitempty"`
	} `json:"data"`
}
