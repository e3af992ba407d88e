// Package ratelimit throttles the credential endpoints per client IP with a
// token bucket kept in Redis, so every server instance shares one budget.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"promanage/backend/internal/platform/apperr"
	"promanage/backend/internal/platform/httpx"
)

// ErrTooManyRequests is the response once a client's bucket is empty.
var ErrTooManyRequests = apperr.RateLimited("Too many requests. Try again in 15 minutes.")

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// bucketScript refills tokens for the elapsed time, then takes one if available.
// KEYS: tokens, last-refill. ARGV: capacity, tokens per second, now (ms), ttl (s).
var bucketScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate     = tonumber(ARGV[2])
local now      = tonumber(ARGV[3])
local ttl      = tonumber(ARGV[4])

local tokens = tonumber(redis.call("GET", KEYS[1]))
local last   = tonumber(redis.call("GET", KEYS[2]))
if not tokens or not last then
  tokens = capacity
else
  tokens = math.min(capacity, tokens + math.max(0, now - last) / 1000 * rate)
end

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call("SET", KEYS[1], tokens, "EX", ttl)
redis.call("SET", KEYS[2], now, "EX", ttl)
return allowed
`)

// RedisLimiter is a distributed token bucket: Capacity requests, refilled
// evenly over Window.
type RedisLimiter struct {
	client   redis.Scripter
	prefix   string
	capacity int
	window   time.Duration
	now      func() time.Time
}

// NewRedisLimiter returns a limiter storing buckets under prefix.
func NewRedisLimiter(client redis.Scripter, prefix string, capacity int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, capacity: capacity, window: window, now: time.Now}
}

// NewClient parses a redis:// URL.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("ratelimit: parse REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// Allow takes one token from key's bucket.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	rate := float64(l.capacity) / l.window.Seconds()
	ttl := int64(l.window / time.Second)
	if ttl < 1 {
		ttl = 1
	}
	keys := []string{
		fmt.Sprintf("%s:%s:tokens", l.prefix, key),
		fmt.Sprintf("%s:%s:last", l.prefix, key),
	}
	res, err := bucketScript.Run(ctx, l.client, keys, l.capacity, rate, l.now().UnixMilli(), ttl).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

// Middleware rejects requests once the client IP's bucket is empty. The key is
// the IP resolved by httpx.WithClientIP, which only honours forwarding headers
// from trusted proxies; without it the transport peer is used. Limiter errors
// let the request through.
func Middleware(l Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := httpx.ClientIPFromContext(r.Context())
			if ip == "" {
				ip = httpx.RemoteIP(r)
			}
			ok, err := l.Allow(r.Context(), ip)
			if err != nil {
				slog.WarnContext(r.Context(), "rate limiter unavailable, allowing request",
					"component", "ratelimit", "ip", ip, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				slog.WarnContext(r.Context(), "rate limit exceeded", "component", "ratelimit", "ip", ip)
				httpx.Error(w, r, ErrTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
