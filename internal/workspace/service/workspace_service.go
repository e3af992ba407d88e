package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"promanage/backend/internal/platform/apperr"
	"promanage/backend/internal/workspace/domain"
	"promanage/backend/internal/workspace/repository"
)

var (
	ErrWorkspaceNotFound = apperr.NotFound("Workspace not found")
	ErrInvalidName       = apperr.Invalid("Workspace name must be at least 2 characters")
)

// WorkspaceService manages workspaces. Reads and renames are scoped to the
// owner; deletion is gated by role at the transport.
type WorkspaceService struct {
	repo repository.Repository
	now  func() time.Time
}

// NewWorkspaceService returns a WorkspaceService backed by repo.
func NewWorkspaceService(repo repository.Repository) *WorkspaceService {
	return &WorkspaceService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Create makes a workspace owned by ownerID.
func (s *WorkspaceService) Create(ctx context.Context, name, ownerID string) (*domain.Workspace, error) {
	name = strings.TrimSpace(name)
	if !domain.ValidName(name) {
		return nil, ErrInvalidName
	}
	now := s.now()
	w := &domain.Workspace{ID: uuid.New().String(), Name: name, OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// List returns the caller's workspaces, newest first.
func (s *WorkspaceService) List(ctx context.Context, ownerID string) ([]*domain.Workspace, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Get returns the workspace with its projects if ownerID owns it.
func (s *WorkspaceService) Get(ctx context.Context, id, ownerID string) (*domain.Workspace, error) {
	w, err := s.repo.GetForOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrWorkspaceNotFound
	}
	return w, nil
}

// Update renames a workspace owned by ownerID.
func (s *WorkspaceService) Update(ctx context.Context, id, ownerID, name string) (*domain.Workspace, error) {
	name = strings.TrimSpace(name)
	if !domain.ValidName(name) {
		return nil, ErrInvalidName
	}
	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return nil, err
	}
	w, err := s.repo.UpdateName(ctx, id, name)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrWorkspaceNotFound
	}
	return w, nil
}

// Delete removes any workspace by id, cascading to its projects and tasks.
func (s *WorkspaceService) Delete(ctx context.Context, id string) error {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if w == nil {
		return ErrWorkspaceNotFound
	}
	return s.repo.Delete(ctx, id)
}
