package rbac

import (
	"context"

	identitydomain "promanage/backend/internal/identity/domain"
)

// Principal is the verified caller attached to a request by the transport.
type Principal struct {
	ID    string
	Email string
	Role  identitydomain.Role
}

type contextKey struct{ name string }

var principalKey = contextKey{"principal"}

// WithPrincipal returns a context carrying p. Transports call it only after
// the access token has been verified.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the principal in ctx and true if set; otherwise the zero value and false.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
