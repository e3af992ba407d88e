package repository

import (
	"context"

	"promanage/backend/internal/audit/domain"
)

// Repository persists audit log entries.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
}
