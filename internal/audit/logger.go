// Package audit records security-relevant actions to the audit_logs table.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"promanage/backend/internal/audit/domain"
	auditrepo "promanage/backend/internal/audit/repository"
)

// IPExtractor returns the client IP for the request in ctx.
type IPExtractor func(context.Context) string

// AuditLogger writes a single audit event. LogEvent is best-effort: failures
// are logged and never reach the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, action, resource, resourceID string, metadata map[string]any)
}

// Logger implements AuditLogger on top of the audit repository.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
	now         func() time.Time
}

// NewLogger returns a Logger. ipExtractor may be nil; the IP is then "unknown".
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor, now: func() time.Time { return time.Now().UTC() }}
}

// LogEvent writes one audit log entry.
func (l *Logger) LogEvent(ctx context.Context, userID, action, resource, resourceID string, metadata map[string]any) {
	if l == nil || l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		if v := l.ipExtractor(ctx); v != "" {
			ip = v
		}
	}
	var meta string
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err != nil {
			slog.Warn("audit: metadata not encodable", "action", action, "error", err)
		} else {
			meta = string(b)
		}
	}
	entry := &domain.AuditLog{
		ID:         uuid.New().String(),
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IP:         ip,
		Metadata:   meta,
		CreatedAt:  l.now(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		slog.Error("audit: failed to log event", "action", action, "resource", resource, "error", err)
	}
}

// Discard is an AuditLogger that records nothing.
type Discard struct{}

// LogEvent implements AuditLogger.
func (Discard) LogEvent(context.Context, string, string, string, string, map[string]any) {}
