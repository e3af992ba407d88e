package security

import "time"

// Test secrets for unit tests only. Do not use in production.
const (
	testAccessSecret  = "test-access-secret-0123456789"
	testRefreshSecret = "test-refresh-secret-9876543210"
)

// NewTestTokenProvider returns a TokenProvider with fixed test secrets,
// a 15 minute access lifetime and a 7 day refresh lifetime.
// For unit tests only. Callers must not use in production.
func NewTestTokenProvider() *TokenProvider {
	p, err := NewTokenProvider(testAccessSecret, testRefreshSecret, 15*time.Minute, 7*24*time.Hour)
	if err != nil {
		panic(err)
	}
	return p
}

// ManualClock is a settable time source for tests.
type ManualClock struct {
	T time.Time
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time { return c.T }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.T = c.T.Add(d) }
