package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"promanage/backend/internal/audit"
	healthhandler "promanage/backend/internal/health/handler"
	identityhandler "promanage/backend/internal/identity/handler"
	"promanage/backend/internal/platform/httpx"
	"promanage/backend/internal/ratelimit"
	"promanage/backend/internal/server/interceptors"
)

// HealthCheckMethod is the standard health probe. It is public and never logged or audited.
const HealthCheckMethod = "/grpc.health.v1.Health/Check"

// PublicMethods are the RPCs that run without an access token.
var PublicMethods = map[string]bool{
	identityhandler.MethodRegister: true,
	identityhandler.MethodLogin:    true,
	identityhandler.MethodRefresh:  true,
	HealthCheckMethod:              true,
}

// RateLimitedMethods share the client-IP budget of the HTTP auth routes.
var RateLimitedMethods = map[string]bool{
	identityhandler.MethodRegister: true,
	identityhandler.MethodLogin:    true,
	identityhandler.MethodRefresh:  true,
}

// GRPCDeps holds what the gRPC surface needs.
type GRPCDeps struct {
	// Sessions serves promanage.session.v1.SessionService.
	Sessions identityhandler.SessionServer
	// Health serves grpc.health.v1.Health.
	Health *healthhandler.Server
	// Tokens verifies bearer tokens on protected RPCs.
	Tokens httpx.AccessVerifier
	// Audit records one entry per authenticated RPC. If nil, nothing is audited.
	Audit audit.AuditLogger
	// Limiter throttles RateLimitedMethods per client IP. If nil, nothing is throttled.
	Limiter ratelimit.Limiter
	// TrustedProxies may set x-forwarded-for and x-real-ip metadata.
	TrustedProxies httpx.TrustedProxies
}

// NewGRPCServer returns a server with tracing, error mapping, client IP
// resolution, logging, rate limiting, auth and audit interceptors installed and
// every service registered.
func NewGRPCServer(deps GRPCDeps, opts ...grpc.ServerOption) *grpc.Server {
	quiet := map[string]bool{HealthCheckMethod: true}
	opts = append([]grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.ErrorsUnary(),
			interceptors.ClientIPUnary(deps.TrustedProxies),
			interceptors.LoggingUnary(quiet),
			interceptors.RateLimitUnary(deps.Limiter, RateLimitedMethods),
			interceptors.AuthUnary(deps.Tokens, PublicMethods),
			interceptors.AuditUnary(deps.Audit, quiet),
		),
	}, opts...)
	s := grpc.NewServer(opts...)
	RegisterServices(s, deps)
	return s
}

// RegisterServices registers the session and health services. A nil dependency
// leaves its service unregistered.
func RegisterServices(s grpc.ServiceRegistrar, deps GRPCDeps) {
	if deps.Sessions != nil {
		identityhandler.RegisterSessionServer(s, deps.Sessions)
	}
	if deps.Health != nil {
		healthpb.RegisterHealthServer(s, deps.Health)
	}
}
