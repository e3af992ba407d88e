// Package handler exposes readiness over REST and the standard gRPC health protocol.
package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"promanage/backend/internal/health"
)

// Server implements grpc.health.v1.Health on top of a Checker. Only the
// overall service ("") and the session service are known.
type Server struct {
	healthpb.UnimplementedHealthServer
	checker  *health.Checker
	services map[string]bool
}

// NewServer returns a health server. A nil checker always reports SERVING.
func NewServer(checker *health.Checker, services ...string) *Server {
	known := map[string]bool{"": true}
	for _, s := range services {
		known[s] = true
	}
	return &Server{checker: checker, services: known}
}

func (s *Server) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if !s.services[req.GetService()] {
		return nil, status.Error(codes.NotFound, "unknown service")
	}
	if s.checker == nil || s.checker.Check(ctx).Healthy() {
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
}
