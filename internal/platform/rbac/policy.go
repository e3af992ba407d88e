package rbac

import (
	"context"

	identitydomain "promanage/backend/internal/identity/domain"
)

// Operation names a protected mutation.
type Operation string

const (
	OpWorkspaceDelete Operation = "workspace.delete"
	OpProjectCreate   Operation = "project.create"
	OpProjectUpdate   Operation = "project.update"
	OpProjectDelete   Operation = "project.delete"
	OpTaskCreate      Operation = "task.create"
	OpTaskDelete      Operation = "task.delete"
)

// RolePolicy resolves the ordered allow-list of roles for an operation.
// An unknown operation yields an empty list, which denies everyone.
type RolePolicy interface {
	AllowedRoles(ctx context.Context, op Operation) ([]identitydomain.Role, error)
}

// StaticPolicy is an in-memory RolePolicy.
type StaticPolicy map[Operation][]identitydomain.Role

// AllowedRoles implements RolePolicy.
func (p StaticPolicy) AllowedRoles(_ context.Context, op Operation) ([]identitydomain.Role, error) {
	return p[op], nil
}

// DefaultPolicy is the built-in allow-list table.
var DefaultPolicy = StaticPolicy{
	OpWorkspaceDelete: {identitydomain.RoleAdmin},
	OpProjectCreate:   {identitydomain.RoleAdmin, identitydomain.RoleManager},
	OpProjectUpdate:   {identitydomain.RoleAdmin, identitydomain.RoleManager},
	OpProjectDelete:   {identitydomain.RoleAdmin, identitydomain.RoleManager},
	OpTaskCreate:      {identitydomain.RoleAdmin, identitydomain.RoleManager},
	OpTaskDelete:      {identitydomain.RoleAdmin, identitydomain.RoleManager},
}

// Authorizer combines RequireAuthenticated and RequireRole for named operations.
type Authorizer struct {
	policy RolePolicy
}

// NewAuthorizer returns an Authorizer backed by policy, or DefaultPolicy when nil.
func NewAuthorizer(policy RolePolicy) *Authorizer {
	if policy == nil {
		policy = DefaultPolicy
	}
	return &Authorizer{policy: policy}
}

// Authorize returns the caller when it is authenticated and its role may perform op.
// Policy lookup failures are returned unclassified.
func (a *Authorizer) Authorize(ctx context.Context, op Operation) (Principal, error) {
	p, err := RequireAuthenticated(ctx)
	if err != nil {
		return Principal{}, err
	}
	roles, err := a.policy.AllowedRoles(ctx, op)
	if err != nil {
		return Principal{}, err
	}
	if err := RequireRole(p, roles...); err != nil {
		return Principal{}, err
	}
	return p, nil
}
