package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// RefreshFingerprint returns the hex SHA-256 of a refresh token. Only the
// fingerprint is persisted; the raw token never reaches the store.
func RefreshFingerprint(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// RefreshFingerprintEqual reports, in constant time, whether token hashes to
// stored. An empty stored value never matches.
func RefreshFingerprintEqual(token, stored string) bool {
	if stored == "" {
		return false
	}
	provided := RefreshFingerprint(token)
	return subtle.ConstantTimeCompare([]byte(provided), []byte(stored)) == 1
}
