package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"promanage/backend/internal/notification"
	"promanage/backend/internal/platform/apperr"
	"promanage/backend/internal/project/domain"
	"promanage/backend/internal/project/repository"
)

var (
	ErrProjectNotFound   = apperr.NotFound("Project not found")
	ErrWorkspaceNotFound = apperr.NotFound("Workspace not found")
	ErrInvalidName       = apperr.Invalid("Project name must be at least 2 characters")
)

// CreateInput holds the fields accepted on project creation.
type CreateInput struct {
	Name        string
	Description string
	WorkspaceID string
}

// ProjectService manages projects. Role checks happen before these methods run.
type ProjectService struct {
	repo repository.Repository
	now  func() time.Time
}

// NewProjectService returns a ProjectService backed by repo.
func NewProjectService(repo repository.Repository) *ProjectService {
	return &ProjectService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Create adds a project to an existing workspace.
func (s *ProjectService) Create(ctx context.Context, in CreateInput) (*domain.Project, error) {
	name := strings.TrimSpace(in.Name)
	if len([]rune(name)) < domain.MinNameLength {
		return nil, ErrInvalidName
	}
	ok, err := s.repo.WorkspaceExists(ctx, in.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrWorkspaceNotFound
	}
	now := s.now()
	p := &domain.Project{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		Status:      domain.StatusActive,
		WorkspaceID: in.WorkspaceID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListByWorkspace returns the workspace's projects, newest first.
func (s *ProjectService) ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Project, error) {
	return s.repo.ListByWorkspace(ctx, workspaceID)
}

// Get returns the project with its tasks.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}
	return p, nil
}

// Update applies patch to the project.
func (s *ProjectService) Update(ctx context.Context, id string, patch domain.Patch) (*domain.Project, error) {
	if err := patch.Validate(); err != nil {
		return nil, apperr.Invalid(err.Error())
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(p)
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the project and its tasks atomically and returns the
// project.deleted event for the caller to publish.
func (s *ProjectService) Delete(ctx context.Context, id, actorEmail string) (notification.Event, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notification.Event{}, err
	}
	if p == nil {
		return notification.Event{}, ErrProjectNotFound
	}
	if err := s.repo.DeleteWithTasks(ctx, id); err != nil {
		return notification.Event{}, err
	}
	return notification.ProjectDeleted(p.ID, p.Name, actorEmail), nil
}
