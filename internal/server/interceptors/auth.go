package interceptors

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	identitydomain "promanage/backend/internal/identity/domain"
	"promanage/backend/internal/platform/httpx"
	"promanage/backend/internal/platform/rbac"
)

// AuthUnary validates the Bearer access token from the "authorization"
// metadata and attaches the principal. publicMethods (e.g. Register, Login,
// Refresh, health Check) run without a principal; a valid token is still
// attached when present.
func AuthUnary(tokens httpx.AccessVerifier, publicMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		public := publicMethods[info.FullMethod]
		token, ok := extractBearer(ctx)
		if !ok {
			if public {
				return handler(ctx, req)
			}
			return nil, httpx.ErrMissingAuthorization
		}
		cred, err := tokens.ValidateAccess(token)
		if err != nil {
			if public {
				return handler(ctx, req)
			}
			return nil, httpx.ErrInvalidAccessToken
		}
		ctx = rbac.WithPrincipal(ctx, rbac.Principal{
			ID:    cred.SubjectID,
			Email: cred.Email,
			Role:  identitydomain.Role(cred.Role),
		})
		return handler(ctx, req)
	}
}

// extractBearer returns the Bearer token from ctx metadata.
func extractBearer(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return "", false
	}
	return httpx.BearerToken(vals[0])
}
