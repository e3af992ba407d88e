// Package engine evaluates role allow-lists with OPA Rego.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/open-policy-agent/opa/v1/rego"

	identitydomain "promanage/backend/internal/identity/domain"
	"promanage/backend/internal/platform/rbac"
)

const rolesQuery = "data.promanage.authz.roles"

// DefaultRegoPolicy mirrors rbac.DefaultPolicy.
const DefaultRegoPolicy = `package promanage.authz

default roles := []

allowed_roles := {
	"workspace.delete": ["ADMIN"],
	"project.create": ["ADMIN", "MANAGER"],
	"project.update": ["ADMIN", "MANAGER"],
	"project.delete": ["ADMIN", "MANAGER"],
	"task.create": ["ADMIN", "MANAGER"],
	"task.delete": ["ADMIN", "MANAGER"],
}

roles := r if {
	r := allowed_roles[input.operation]
}
`

// OPAEvaluator serves rbac.RolePolicy from a compiled Rego module. The module
// must define data.promanage.authz.roles as an array of role names for
// input.operation.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

var _ rbac.RolePolicy = (*OPAEvaluator)(nil)

// NewOPAEvaluator compiles src, or DefaultRegoPolicy when src is empty.
func NewOPAEvaluator(ctx context.Context, src string) (*OPAEvaluator, error) {
	if src == "" {
		src = DefaultRegoPolicy
	}
	pq, err := rego.New(
		rego.Query(rolesQuery),
		rego.Module("authz.rego", src),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile policy: %w", err)
	}
	return &OPAEvaluator{query: pq}, nil
}

// NewOPAEvaluatorFromFile compiles the policy at path; an empty path uses the default policy.
func NewOPAEvaluatorFromFile(ctx context.Context, path string) (*OPAEvaluator, error) {
	if path == "" {
		return NewOPAEvaluator(ctx, "")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return NewOPAEvaluator(ctx, string(b))
}

// AllowedRoles evaluates the policy for op. Evaluation errors are returned so
// the caller fails closed.
func (e *OPAEvaluator) AllowedRoles(ctx context.Context, op rbac.Operation) ([]identitydomain.Role, error) {
	rs, err := e.query.Eval(ctx, rego.EvalInput(map[string]interface{}{"operation": string(op)}))
	if err != nil {
		slog.Error("policy: evaluation failed", "operation", op, "error", err)
		return nil, fmt.Errorf("eval policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return nil, nil
	}
	raw, ok := rs[0].Expressions[0].Value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("policy: roles for %q is %T, want array", op, rs[0].Expressions[0].Value)
	}
	roles := make([]identitydomain.Role, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("policy: role entry for %q is %T, want string", op, v)
		}
		roles = append(roles, identitydomain.Role(s))
	}
	return roles, nil
}

// HealthCheck evaluates a known operation against the compiled policy.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	roles, err := e.AllowedRoles(ctx, rbac.OpWorkspaceDelete)
	if err != nil {
		return err
	}
	if len(roles) == 0 {
		return fmt.Errorf("policy query returned no roles for %s", rbac.OpWorkspaceDelete)
	}
	return nil
}
