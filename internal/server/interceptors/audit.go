package interceptors

import (
	"context"

	"google.golang.org/grpc"

	"promanage/backend/internal/audit"
	"promanage/backend/internal/platform/rbac"
)

// AuditUnary records an audit entry after each RPC that ran for an
// authenticated principal. skipMethods are never audited. Writes are
// best-effort and never fail the RPC.
func AuditUnary(logger audit.AuditLogger, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if logger == nil || skipMethods[info.FullMethod] {
			return resp, err
		}
		p, ok := rbac.PrincipalFrom(ctx)
		if !ok {
			return resp, err
		}
		ar := audit.ParseFullMethod(info.FullMethod)
		var meta map[string]any
		if err != nil {
			meta = map[string]any{"failed": true}
		}
		logger.LogEvent(ctx, p.ID, ar.Action, ar.Resource, "", meta)
		return resp, err
	}
}
