// Package rbac holds the authorization guard: authenticated-caller checks,
// per-operation role allow-lists and field-level scopes for partial updates.
package rbac

import (
	"context"
	"fmt"
	"strings"

	identitydomain "promanage/backend/internal/identity/domain"
	"promanage/backend/internal/platform/apperr"
)

// ErrAuthenticationRequired is returned when no verified principal is attached.
var ErrAuthenticationRequired = apperr.Unauthorized("Authentication required")

// RequireAuthenticated returns the verified principal in ctx.
func RequireAuthenticated(ctx context.Context) (Principal, error) {
	p, ok := PrincipalFrom(ctx)
	if !ok || p.ID == "" {
		return Principal{}, ErrAuthenticationRequired
	}
	return p, nil
}

// RequireRole allows p only when its role is in allowed. The Forbidden message
// names the caller's role and every role that would have been accepted.
func RequireRole(p Principal, allowed ...identitydomain.Role) error {
	for _, r := range allowed {
		if p.Role == r {
			return nil
		}
	}
	names := make([]string, len(allowed))
	for i, r := range allowed {
		names[i] = string(r)
	}
	return apperr.Forbidden(fmt.Sprintf(
		"Role '%s' is not authorized to access this resource. Required: %s",
		p.Role, strings.Join(names, ", ")))
}

// FieldScopes lists, per role, the only fields that role may set in a partial
// update. Roles without an entry have full field access.
type FieldScopes map[identitydomain.Role][]string

// TaskFieldScopes restricts members to changing a task's status.
var TaskFieldScopes = FieldScopes{
	identitydomain.RoleMember: {"status"},
}

// RequireFieldScope checks every attempted field against p's scope. The
// Forbidden message lists exactly the disallowed fields, in attempted order.
func RequireFieldScope(p Principal, attempted []string, scopes FieldScopes) error {
	allowed, scoped := scopes[p.Role]
	if !scoped {
		return nil
	}
	var denied []string
	for _, f := range attempted {
		if !contains(allowed, f) {
			denied = append(denied, f)
		}
	}
	if len(denied) == 0 {
		return nil
	}
	return apperr.Forbidden(fmt.Sprintf("%s can only update: %s. Cannot update: %s",
		rolePlural(p.Role), strings.Join(allowed, ", "), strings.Join(denied, ", ")))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// rolePlural turns MEMBER into Members.
func rolePlural(r identitydomain.Role) string {
	s := strings.ToLower(string(r))
	if s == "" {
		return "Callers"
	}
	return strings.ToUpper(s[:1]) + s[1:] + "s"
}
