package repository

import (
	"context"

	"promanage/backend/internal/task/domain"
)

// Repository persists tasks. Lookups return nil, nil when nothing matches.
type Repository interface {
	ProjectExists(ctx context.Context, projectID string) (bool, error)
	GetUserRef(ctx context.Context, userID string) (*domain.UserRef, error)
	Create(ctx context.Context, t *domain.Task) error
	// GetByID returns the task with its assignee and project.
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	// ListByProject returns the project's tasks newest first, with assignees.
	ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error)
	// ListByAssignee returns tasks ordered by priority descending then due date
	// ascending, with project and workspace refs.
	ListByAssignee(ctx context.Context, userID string) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
}
