package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// VerifySignature checks a webhook's authenticity: HMAC-SHA256 over the
// exact raw request bytes, hex-encoded, compared constant-time against the
// signature header. The input must be the unparsed byte sequence the vendor
// signed; re-serialized JSON changes byte order and breaks verification.
//
// Returns false (never panics or errors) on missing header, missing secret
// or empty body. Logging the outcome is the caller's responsibility.
func VerifySignature(rawBody []byte, signatureHeader, secret string) bool {
	if len(rawBody) == 0 || signatureHeader == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(signatureHeader)) == 1
}

// ComputeSignature returns the hex HMAC-SHA256 of the body. Used by tests
// and by outbound webhook simulation tooling.
func ComputeSignature(rawBody []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}
