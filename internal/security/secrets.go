package security

import (
	"errors"
	"os"
	"strings"
)

// ErrInvalidSecret is returned when a secret reference resolves to nothing.
var ErrInvalidSecret = errors.New("invalid secret")

const secretFilePrefix = "file:"

// LoadSecret returns s unchanged, or when s has the form "file:<path>" the
// trimmed contents of that file (for mounted secrets).
func LoadSecret(s string) (string, error) {
	if !strings.HasPrefix(s, secretFilePrefix) {
		return s, nil
	}
	path := strings.TrimSpace(strings.TrimPrefix(s, secretFilePrefix))
	if path == "" {
		return "", ErrInvalidSecret
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	v := strings.TrimSpace(string(b))
	if v == "" {
		return "", ErrInvalidSecret
	}
	return v, nil
}
