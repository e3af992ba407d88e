package repository

import (
	"context"

	"promanage/backend/internal/workspace/domain"
)

// Repository persists workspaces. Lookups return nil, nil when nothing matches.
type Repository interface {
	Create(ctx context.Context, w *domain.Workspace) error
	GetByID(ctx context.Context, id string) (*domain.Workspace, error)
	// GetForOwner returns the workspace with its owner and projects, or nil
	// when it does not exist or belongs to someone else.
	GetForOwner(ctx context.Context, id, ownerID string) (*domain.Workspace, error)
	// ListByOwner returns the owner's workspaces newest first with ProjectCount set.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Workspace, error)
	UpdateName(ctx context.Context, id, name string) (*domain.Workspace, error)
	// Delete removes the workspace; projects and tasks cascade.
	Delete(ctx context.Context, id string) error
}
