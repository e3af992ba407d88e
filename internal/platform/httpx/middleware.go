package httpx

import (
	"net/http"
	"strings"

	identitydomain "promanage/backend/internal/identity/domain"
	"promanage/backend/internal/platform/apperr"
	"promanage/backend/internal/platform/rbac"
	"promanage/backend/internal/security"
)

var (
	ErrMissingAuthorization = apperr.Unauthorized("Missing or invalid authorization header")
	ErrInvalidAccessToken   = apperr.Unauthorized("Invalid or expired token")
)

// AccessVerifier validates access tokens.
type AccessVerifier interface {
	ValidateAccess(token string) (*security.AccessCredential, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme match is case-insensitive.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authenticate verifies the bearer access token and attaches the principal.
// A missing or malformed header is rejected before any verification.
func Authenticate(v AccessVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				Error(w, r, ErrMissingAuthorization)
				return
			}
			cred, err := v.ValidateAccess(token)
			if err != nil {
				Error(w, r, ErrInvalidAccessToken)
				return
			}
			ctx := rbac.WithPrincipal(r.Context(), rbac.Principal{
				ID:    cred.SubjectID,
				Email: cred.Email,
				Role:  identitydomain.Role(cred.Role),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize admits only principals whose role the authorizer allows for op.
// It must run after Authenticate.
func Authorize(a *rbac.Authorizer, op rbac.Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := a.Authorize(r.Context(), op); err != nil {
				Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
