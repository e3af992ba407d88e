package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"promanage/backend/internal/audit"
	auditdomain "promanage/backend/internal/audit/domain"
	"promanage/backend/internal/notification"
	"promanage/backend/internal/platform/apperr"
	"promanage/backend/internal/platform/rbac"
	"promanage/backend/internal/task/domain"
	"promanage/backend/internal/task/repository"
)

var (
	ErrTaskNotFound     = apperr.NotFound("Task not found")
	ErrProjectNotFound  = apperr.NotFound("Project not found")
	ErrAssigneeNotFound = apperr.NotFound("Assignee not found")
	ErrInvalidTitle     = apperr.Invalid("Title must be at least 2 characters")
	ErrInvalidPriority  = apperr.Invalid("Priority must be one of LOW, MEDIUM, HIGH, CRITICAL")
	ErrDueDateInPast    = apperr.Invalid("Due date must be in the future")
)

// CreateInput holds the fields accepted on task creation.
type CreateInput struct {
	Title       string
	Description string
	Priority    domain.Priority
	DueDate     *time.Time
	ProjectID   string
	AssigneeID  *string
}

// TaskService manages tasks. Mutations return the notification events they
// raise; publishing them is the caller's job.
type TaskService struct {
	repo  repository.Repository
	audit audit.AuditLogger
	now   func() time.Time
}

// NewTaskService returns a TaskService. auditLogger may be nil.
func NewTaskService(repo repository.Repository, auditLogger audit.AuditLogger) *TaskService {
	if auditLogger == nil {
		auditLogger = audit.Discard{}
	}
	return &TaskService{repo: repo, audit: auditLogger, now: func() time.Time { return time.Now().UTC() }}
}

// Create adds a task to an existing project.
func (s *TaskService) Create(ctx context.Context, actor rbac.Principal, in CreateInput) (*domain.Task, []notification.Event, error) {
	title := strings.TrimSpace(in.Title)
	if len([]rune(title)) < domain.MinTitleLength {
		return nil, nil, ErrInvalidTitle
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, nil, ErrInvalidPriority
	}
	now := s.now()
	if in.DueDate != nil && !in.DueDate.After(now) {
		return nil, nil, ErrDueDateInPast
	}
	ok, err := s.repo.ProjectExists(ctx, in.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrProjectNotFound
	}
	var assignee *domain.UserRef
	if in.AssigneeID != nil {
		if assignee, err = s.lookupAssignee(ctx, *in.AssigneeID); err != nil {
			return nil, nil, err
		}
	}

	t := &domain.Task{
		ID:          uuid.New().String(),
		Title:       title,
		Description: in.Description,
		Status:      domain.StatusTodo,
		Priority:    in.Priority,
		ProjectID:   in.ProjectID,
		AssigneeID:  in.AssigneeID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Assignee:    assignee,
	}
	if in.DueDate != nil {
		d := in.DueDate.UTC()
		t.DueDate = &d
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, nil, err
	}

	s.audit.LogEvent(ctx, actor.ID, auditdomain.ActionTaskCreated, "task", t.ID,
		map[string]any{"title": t.Title, "projectId": t.ProjectID})

	var events []notification.Event
	if assignee != nil {
		events = append(events, notification.TaskAssigned(t.ID, t.Title, assignee.Email, actor.Email))
	}
	return t, events, nil
}

func (s *TaskService) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	return s.repo.ListByProject(ctx, projectID)
}

// ListMine returns the tasks assigned to userID across all workspaces.
func (s *TaskService) ListMine(ctx context.Context, userID string) ([]*domain.Task, error) {
	return s.repo.ListByAssignee(ctx, userID)
}

func (s *TaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}
	return t, nil
}

// Update applies patch on behalf of actor. The field scope of actor's role is
// checked against every present field before anything is loaded or written.
func (s *TaskService) Update(ctx context.Context, actor rbac.Principal, id string, patch domain.Patch) (*domain.Task, []notification.Event, error) {
	if err := patch.Validate(); err != nil {
		return nil, nil, apperr.Invalid(err.Error())
	}
	if err := rbac.RequireFieldScope(actor, patch.Fields(), rbac.TaskFieldScopes); err != nil {
		return nil, nil, err
	}
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	oldStatus := t.Status
	oldAssignee := t.AssigneeID

	var assignee *domain.UserRef
	if patch.AssigneeID.Present() {
		if assignee, err = s.lookupAssignee(ctx, patch.AssigneeID.Value); err != nil {
			return nil, nil, err
		}
	}
	patch.Apply(t)
	if assignee != nil {
		t.Assignee = assignee
	}
	t.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, nil, err
	}

	var events []notification.Event
	if assignee != nil && (oldAssignee == nil || *oldAssignee != assignee.ID) {
		events = append(events, notification.TaskAssigned(t.ID, t.Title, assignee.Email, actor.Email))
	}
	if patch.Status.Present() && patch.Status.Value != oldStatus {
		events = append(events, notification.TaskStatusChanged(t.ID, string(oldStatus), string(t.Status), actor.Email))
	}
	return t, events, nil
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *TaskService) lookupAssignee(ctx context.Context, userID string) (*domain.UserRef, error) {
	u, err := s.repo.GetUserRef(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrAssigneeNotFound
	}
	return u, nil
}
