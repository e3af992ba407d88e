package interceptors

import (
	"context"
	"net"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"

	"promanage/backend/internal/platform/httpx"
)

// ClientIPUnary resolves the caller's address once and stores it with
// httpx.ContextWithClientIP for the interceptors and handlers that follow.
func ClientIPUnary(trusted httpx.TrustedProxies) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		return handler(httpx.ContextWithClientIP(ctx, ClientIP(ctx, trusted)), req)
	}
}

// ClientIP returns the transport peer's IP, or "". x-forwarded-for and
// x-real-ip metadata are honoured only when the peer is a trusted proxy.
func ClientIP(ctx context.Context, trusted httpx.TrustedProxies) string {
	ip := peerIP(ctx)
	if ip == "" || !trusted.Trusts(ip) {
		return ip
	}
	md, _ := metadata.FromIncomingContext(ctx)
	return trusted.Resolve(ip,
		strings.Join(md.Get("x-forwarded-for"), ","),
		strings.Join(md.Get("x-real-ip"), ""))
}

func peerIP(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
		return host
	}
	return p.Addr.String()
}
