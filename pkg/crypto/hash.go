package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sha256Hex computes the SHA256 hash of an input string and returns it as a hex-encoded string.
func Sha256Hex(input string) string {
	hasher := sha256.New()
	_, _ = hasher.Write([]byte(input)) //nolint:errcheck
	return hex.EncodeToString(hasher.Sum(nil))
}

// Fingerprint returns a short, non-reversible identifier for a secret such as a
// bearer token, suitable for log lines.
func Fingerprint(secret string) string {
	if secret == "" {
		return ""
	}
	return Sha256Hex(secret)[:16]
}
