package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"promanage/backend/internal/notification"
	"promanage/backend/internal/platform/apperr"
	"promanage/backend/internal/platform/optional"
	"promanage/backend/internal/project/domain"
)

type memProjectRepo struct {
	mu         sync.Mutex
	workspaces map[string]bool
	m          map[string]*domain.Project
	deleteErr  error
}

func newMemProjectRepo(workspaces ...string) *memProjectRepo {
	r := &memProjectRepo{workspaces: map[string]bool{}, m: map[string]*domain.Project{}}
	for _, w := range workspaces {
		r.workspaces[w] = true
	}
	return r
}

func (r *memProjectRepo) WorkspaceExists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.workspaces[id], nil
}

func (r *memProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.m[p.ID] = &cp
	return nil
}

func (r *memProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.m[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProjectRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Project
	for _, p := range r.m {
		if p.WorkspaceID == workspaceID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.m[p.ID] = &cp
	return nil
}

func (r *memProjectRepo) DeleteWithTasks(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.m, id)
	return nil
}

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()
	svc := NewProjectService(newMemProjectRepo("ws-1"))

	p, err := svc.Create(ctx, CreateInput{Name: "Apollo", Description: "moon", WorkspaceID: "ws-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Status != domain.StatusActive || p.ID == "" {
		t.Errorf("project = %+v", p)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "Apollo", WorkspaceID: "missing"}); !errors.Is(err, ErrWorkspaceNotFound) {
		t.Errorf("missing workspace: err = %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "A", WorkspaceID: "ws-1"}); !errors.Is(err, ErrInvalidName) {
		t.Errorf("short name: err = %v", err)
	}
}

func TestProjectService_Update(t *testing.T) {
	ctx := context.Background()
	svc := NewProjectService(newMemProjectRepo("ws-1"))
	p, err := svc.Create(ctx, CreateInput{Name: "Apollo", WorkspaceID: "ws-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := svc.Update(ctx, p.ID, domain.Patch{Status: optional.Of(domain.StatusArchived)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Status != domain.StatusArchived || got.Name != "Apollo" {
		t.Errorf("Update = %+v", got)
	}
	_, err = svc.Update(ctx, p.ID, domain.Patch{Status: optional.Of(domain.Status("GONE"))})
	if apperr.KindOf(err) != apperr.KindInvalid {
		t.Errorf("bad status: err = %v", err)
	}
	if _, err := svc.Update(ctx, "missing", domain.Patch{}); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("missing: err = %v", err)
	}
}

func TestProjectService_DeleteReturnsEvent(t *testing.T) {
	ctx := context.Background()
	repo := newMemProjectRepo("ws-1")
	svc := NewProjectService(repo)
	p, err := svc.Create(ctx, CreateInput{Name: "Apollo", WorkspaceID: "ws-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	ev, err := svc.Delete(ctx, p.ID, "alice@x.com")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ev.Type != notification.TypeProjectDeleted || ev.Payload["projectName"] != "Apollo" || ev.Payload["deletedBy"] != "alice@x.com" {
		t.Errorf("event = %+v", ev)
	}
	if _, err := svc.Get(ctx, p.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Get after delete: err = %v", err)
	}
	if _, err := svc.Delete(ctx, p.ID, "alice@x.com"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("second delete: err = %v", err)
	}
}

func TestProjectService_DeleteFailureEmitsNothing(t *testing.T) {
	ctx := context.Background()
	repo := newMemProjectRepo("ws-1")
	svc := NewProjectService(repo)
	p, _ := svc.Create(ctx, CreateInput{Name: "Apollo", WorkspaceID: "ws-1"})
	boom := errors.New("tx aborted")
	repo.deleteErr = boom
	ev, err := svc.Delete(ctx, p.ID, "alice@x.com")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if ev.Type != "" {
		t.Errorf("event on failure = %+v", ev)
	}
}
