package security

import (
	"math"
	"regexp"
	"strconv"
	"time"
)

// DefaultTokenTTL is used when a configured lifetime cannot be parsed.
const DefaultTokenTTL = 900 * time.Second

var durationPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

var durationUnits = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// ParseDuration parses lifetimes written as an integer and a unit letter
// (s, m, h, d), e.g. "15m" or "7d". Anything else, including zero and values
// that overflow, yields DefaultTokenTTL and ok=false. It never fails.
func ParseDuration(s string) (d time.Duration, ok bool) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return DefaultTokenTTL, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return DefaultTokenTTL, false
	}
	unit := durationUnits[m[2]]
	if n > math.MaxInt64/int64(unit) {
		return DefaultTokenTTL, false
	}
	return time.Duration(n) * unit, true
}
