// Package security implements the webhook transport signature check.
package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// ValidSignature reports whether header matches the expected
// base64-encoded HMAC-SHA256 of the raw request body under the pre-shared
// secret. The comparison is constant time.
func ValidSignature(body []byte, secret, header string) bool {
	if header == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(header)) == 1
}
