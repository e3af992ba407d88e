package interceptors

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"

	"promanage/backend/internal/platform/httpx"
	"promanage/backend/internal/ratelimit"
)

// RateLimitUnary applies the client-IP budget to the listed methods, sharing
// buckets with the HTTP auth routes. It reads the IP stored by ClientIPUnary.
// Limiter errors let the call through.
func RateLimitUnary(l ratelimit.Limiter, methods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if l == nil || !methods[info.FullMethod] {
			return handler(ctx, req)
		}
		ip := httpx.ClientIPFromContext(ctx)
		if ip == "" {
			ip = peerIP(ctx)
		}
		ok, err := l.Allow(ctx, ip)
		if err != nil {
			slog.WarnContext(ctx, "rate limiter unavailable, allowing request",
				"component", "ratelimit", "method", info.FullMethod, "ip", ip, "error", err)
			return handler(ctx, req)
		}
		if !ok {
			slog.WarnContext(ctx, "rate limit exceeded", "component", "ratelimit", "method", info.FullMethod, "ip", ip)
			return nil, ratelimit.ErrTooManyRequests
		}
		return handler(ctx, req)
	}
}
