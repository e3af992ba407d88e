package domain

import "time"

// Actions recorded by the HTTP and gRPC layers.
const (
	ActionRegister     = "register"
	ActionLogin        = "login"
	ActionLoginFailure = "login_failure"
	ActionLogout       = "logout"
	ActionRevoke       = "revoke"
	ActionTaskCreated  = "TASK_CREATED"
)

// AuditLog is one recorded action. Metadata is a JSON document or empty.
type AuditLog struct {
	ID         string
	UserID     string
	Action     string
	Resource   string
	ResourceID string
	IP         string
	Metadata   string
	CreatedAt  time.Time
}
