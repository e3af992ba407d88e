package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	identitydomain "promanage/backend/internal/identity/domain"
	"promanage/backend/internal/notification"
	"promanage/backend/internal/platform/apperr"
	"promanage/backend/internal/platform/optional"
	"promanage/backend/internal/platform/rbac"
	"promanage/backend/internal/task/domain"
)

type memTaskRepo struct {
	mu       sync.Mutex
	projects map[string]bool
	users    map[string]domain.UserRef
	m        map[string]*domain.Task
	updates  int
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{
		projects: map[string]bool{"p-1": true},
		users: map[string]domain.UserRef{
			"u-bob":   {ID: "u-bob", Name: "Bob", Email: "bob@x.com"},
			"u-carol": {ID: "u-carol", Name: "Carol", Email: "carol@x.com"},
		},
		m: map[string]*domain.Task{},
	}
}

func (r *memTaskRepo) ProjectExists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.projects[id], nil
}

func (r *memTaskRepo) GetUserRef(ctx context.Context, id string) (*domain.UserRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.m[t.ID] = &cp
	return nil
}

func (r *memTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.m[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *memTaskRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Task
	for _, t := range r.m {
		if t.ProjectID == projectID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memTaskRepo) ListByAssignee(ctx context.Context, userID string) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Task
	for _, t := range r.m {
		if t.AssigneeID != nil && *t.AssigneeID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	cp := *t
	r.m[t.ID] = &cp
	return nil
}

func (r *memTaskRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
	return nil
}

type recordingAudit struct {
	mu      sync.Mutex
	actions []string
}

func (a *recordingAudit) LogEvent(ctx context.Context, userID, action, resource, resourceID string, metadata map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action)
}

var (
	manager = rbac.Principal{ID: "u-mgr", Email: "mgr@x.com", Role: identitydomain.RoleManager}
	member  = rbac.Principal{ID: "u-bob", Email: "bob@x.com", Role: identitydomain.RoleMember}
)

func strPtr(s string) *string { return &s }

func TestTaskService_Create(t *testing.T) {
	ctx := context.Background()
	aud := &recordingAudit{}
	svc := NewTaskService(newMemTaskRepo(), aud)

	task, events, err := svc.Create(ctx, manager, CreateInput{Title: "Write docs", ProjectID: "p-1", AssigneeID: strPtr("u-bob")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.Status != domain.StatusTodo || task.Priority != domain.PriorityMedium {
		t.Errorf("defaults = %s/%s", task.Status, task.Priority)
	}
	if len(events) != 1 || events[0].Type != notification.TypeTaskAssigned || events[0].Payload["assigneeEmail"] != "bob@x.com" {
		t.Errorf("events = %+v", events)
	}
	if len(aud.actions) != 1 || aud.actions[0] != "TASK_CREATED" {
		t.Errorf("audit = %v", aud.actions)
	}

	_, events, err = svc.Create(ctx, manager, CreateInput{Title: "Unassigned", ProjectID: "p-1"})
	if err != nil || len(events) != 0 {
		t.Errorf("unassigned create: events=%v err=%v", events, err)
	}
}

func TestTaskService_CreateRejects(t *testing.T) {
	ctx := context.Background()
	svc := NewTaskService(newMemTaskRepo(), nil)
	past := time.Now().Add(-time.Hour)
	tests := []struct {
		name string
		in   CreateInput
		want error
	}{
		{"missing project", CreateInput{Title: "Task", ProjectID: "p-404"}, ErrProjectNotFound},
		{"short title", CreateInput{Title: "T", ProjectID: "p-1"}, ErrInvalidTitle},
		{"past due date", CreateInput{Title: "Task", ProjectID: "p-1", DueDate: &past}, ErrDueDateInPast},
		{"bad priority", CreateInput{Title: "Task", ProjectID: "p-1", Priority: "URGENT"}, ErrInvalidPriority},
		{"unknown assignee", CreateInput{Title: "Task", ProjectID: "p-1", AssigneeID: strPtr("u-404")}, ErrAssigneeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.Create(ctx, manager, tt.in); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTaskService_MemberFieldScope(t *testing.T) {
	ctx := context.Background()
	repo := newMemTaskRepo()
	svc := NewTaskService(repo, nil)
	task, _, err := svc.Create(ctx, manager, CreateInput{Title: "Write docs", ProjectID: "p-1", AssigneeID: strPtr("u-bob")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	patch := domain.Patch{Title: optional.Of("Hacked"), Priority: optional.Of(domain.PriorityCritical)}
	_, _, err = svc.Update(ctx, member, task.ID, patch)
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("err = %v, want forbidden", err)
	}
	if got := apperr.PublicMessage(err); got != "Members can only update: status. Cannot update: title, priority" {
		t.Errorf("message = %q", got)
	}
	mixed := domain.Patch{Status: optional.Of(domain.StatusDone), Title: optional.Of("Hacked")}
	if _, _, err := svc.Update(ctx, member, task.ID, mixed); apperr.PublicMessage(err) != "Members can only update: status. Cannot update: title" {
		t.Errorf("mixed patch: err = %v", err)
	}
	if repo.updates != 0 {
		t.Fatalf("denied patches wrote %d times", repo.updates)
	}
	stored, _ := repo.GetByID(ctx, task.ID)
	if stored.Title != "Write docs" || stored.Status != domain.StatusTodo {
		t.Errorf("task changed: %+v", stored)
	}

	got, events, err := svc.Update(ctx, member, task.ID, domain.Patch{Status: optional.Of(domain.StatusInProgress)})
	if err != nil {
		t.Fatalf("member status update: %v", err)
	}
	if got.Status != domain.StatusInProgress {
		t.Errorf("status = %s", got.Status)
	}
	if len(events) != 1 || events[0].Type != notification.TypeTaskStatusChanged ||
		events[0].Payload["oldStatus"] != "TODO" || events[0].Payload["changedBy"] != "bob@x.com" {
		t.Errorf("events = %+v", events)
	}
}

func TestTaskService_UpdateEvents(t *testing.T) {
	ctx := context.Background()
	svc := NewTaskService(newMemTaskRepo(), nil)
	task, _, err := svc.Create(ctx, manager, CreateInput{Title: "Write docs", ProjectID: "p-1", AssigneeID: strPtr("u-bob")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, events, err := svc.Update(ctx, manager, task.ID, domain.Patch{AssigneeID: optional.Of("u-bob"), Status: optional.Of(domain.StatusTodo)})
	if err != nil || len(events) != 0 {
		t.Errorf("unchanged values raised %v (err %v)", events, err)
	}

	_, events, err = svc.Update(ctx, manager, task.ID, domain.Patch{AssigneeID: optional.Of("u-carol")})
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if len(events) != 1 || events[0].Payload["assigneeEmail"] != "carol@x.com" {
		t.Errorf("reassign events = %+v", events)
	}

	got, events, err := svc.Update(ctx, manager, task.ID, domain.Patch{AssigneeID: optional.Null[string]()})
	if err != nil || len(events) != 0 || got.AssigneeID != nil {
		t.Errorf("unassign: task=%+v events=%v err=%v", got, events, err)
	}

	if _, _, err := svc.Update(ctx, manager, task.ID, domain.Patch{AssigneeID: optional.Of("u-404")}); !errors.Is(err, ErrAssigneeNotFound) {
		t.Errorf("unknown assignee: err = %v", err)
	}
	if _, _, err := svc.Update(ctx, manager, "t-404", domain.Patch{}); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("missing task: err = %v", err)
	}
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()
	svc := NewTaskService(newMemTaskRepo(), nil)
	task, _, _ := svc.Create(ctx, manager, CreateInput{Title: "Write docs", ProjectID: "p-1"})
	if err := svc.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("second delete: err = %v", err)
	}
}
