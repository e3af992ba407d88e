package security

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the cost used when none is configured.
const DefaultBcryptCost = 10

// dummyPassword is hashed once and compared against when a login names an
// unknown email, so both failure paths spend the same bcrypt work.
const dummyPassword = "promanage-unknown-account"

// Hasher hashes and verifies passwords using bcrypt. Callers must not log or
// persist plaintext passwords.
type Hasher struct {
	Cost int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewHasher returns a Hasher with the given bcrypt cost, clamped to the range
// bcrypt accepts. A non-positive cost selects DefaultBcryptCost.
func NewHasher(cost int) *Hasher {
	switch {
	case cost <= 0:
		cost = DefaultBcryptCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash produces a salted bcrypt digest of password. Two calls with the same
// input return different digests; both verify.
func (h *Hasher) Hash(password []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(password, h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether hash was produced from password. A malformed hash
// verifies as false.
func (h *Hasher) Verify(hash string, password []byte) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), password) == nil
}

// VerifyUnknown burns one bcrypt comparison against a fixed digest and always
// returns false. Used when the account does not exist.
func (h *Hasher) VerifyUnknown(password []byte) bool {
	h.dummyOnce.Do(func() {
		h.dummyHash, _ = bcrypt.GenerateFromPassword([]byte(dummyPassword), h.Cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, password)
	return false
}
