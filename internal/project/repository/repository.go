package repository

import (
	"context"

	"promanage/backend/internal/project/domain"
)

// Repository persists projects. Lookups return nil, nil when nothing matches.
type Repository interface {
	WorkspaceExists(ctx context.Context, workspaceID string) (bool, error)
	Create(ctx context.Context, p *domain.Project) error
	// GetByID returns the project with its workspace and tasks.
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	// ListByWorkspace returns projects newest first with TaskCount set.
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	// DeleteWithTasks removes the project's tasks and then the project in one transaction.
	DeleteWithTasks(ctx context.Context, id string) error
}
