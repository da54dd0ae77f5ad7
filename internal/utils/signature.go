package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// SignWebhookPayload creates an HMAC-SHA256 signature for a webhook body
func SignWebhookPayload(body, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// VerifyWebhookSignature verifies a webhook signature in constant time
func VerifyWebhookSignature(body, signature, secret string) bool {
	expected := SignWebhookPayload(body, secret)
	return subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) == 1
}
