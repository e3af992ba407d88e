package domain

import (
	"errors"
	"strings"
	"time"

	"promanage/backend/internal/platform/optional"
)

// Status is a project's lifecycle state.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusArchived  Status = "ARCHIVED"
	StatusCompleted Status = "COMPLETED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusArchived, StatusCompleted:
		return true
	}
	return false
}

// MinNameLength is the shortest accepted project name.
const MinNameLength = 2

// Project belongs to a workspace and holds tasks.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      Status        `json:"status"`
	WorkspaceID string        `json:"workspaceId"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	TaskCount   *int          `json:"taskCount,omitempty"`
	Workspace   *WorkspaceRef `json:"workspace,omitempty"`
	Tasks       []TaskRef     `json:"tasks,omitempty"`
}

// WorkspaceRef names the parent workspace.
type WorkspaceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskRef is a task listed inside its project.
type TaskRef struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	Priority   string     `json:"priority"`
	DueDate    *time.Time `json:"dueDate,omitempty"`
	AssigneeID *string    `json:"assigneeId"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Patch is a partial project update; only present fields are applied.
type Patch struct {
	Name        optional.Value[string] `json:"name"`
	Description optional.Value[string] `json:"description"`
	Status      optional.Value[Status] `json:"status"`
}

// Validate checks every present field.
func (p Patch) Validate() error {
	if p.Name.Set && (p.Name.Null || len([]rune(strings.TrimSpace(p.Name.Value))) < MinNameLength) {
		return errors.New("Project name must be at least 2 characters")
	}
	if p.Description.Null {
		return errors.New("Description must be a string")
	}
	if p.Status.Set && (p.Status.Null || !p.Status.Value.Valid()) {
		return errors.New("Status must be one of ACTIVE, ARCHIVED, COMPLETED")
	}
	return nil
}

// Empty reports whether no field is present.
func (p Patch) Empty() bool {
	return !p.Name.Set && !p.Description.Set && !p.Status.Set
}

// Apply copies present fields onto proj.
func (p Patch) Apply(proj *Project) {
	if p.Name.Present() {
		proj.Name = strings.TrimSpace(p.Name.Value)
	}
	if p.Description.Present() {
		proj.Description = p.Description.Value
	}
	if p.Status.Present() {
		proj.Status = p.Status.Value
	}
}
