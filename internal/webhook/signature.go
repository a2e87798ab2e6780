package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const signaturePrefix = "sha256="

// Sign returns the X-MetaMind-Signature value for payload
func Sign(secret string, payload []byte) string {
	return signaturePrefix + hex.EncodeToString(digest(secret, payload))
}

// Verify checks a received X-MetaMind-Signature header against payload.
// Receivers use it to authenticate deliveries.
func Verify(secret string, payload []byte, header string) bool {
	encoded, ok := strings.CutPrefix(header, signaturePrefix)
	if !ok {
		return false
	}
	got, err := hex.DecodeString(encoded)
	if err != nil {
		return false
	}
	return hmac.Equal(got, digest(secret, payload))
}

func digest(secret string, payload []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return mac.Sum(nil)
}
