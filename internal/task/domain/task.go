package domain

import "time"

// Status is a task's workflow state.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusInReview   Status = "IN_REVIEW"
	StatusDone       Status = "DONE"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusInReview, StatusDone:
		return true
	}
	return false
}

// Priority orders tasks; the declaration order matches the database enum.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

// Rank returns 0 for LOW up to 3 for CRITICAL, and -1 for unknown values.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityCritical:
		return 3
	}
	return -1
}

// MinTitleLength is the shortest accepted task title.
const MinTitleLength = 2

type Task struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Status      Status      `json:"status"`
	Priority    Priority    `json:"priority"`
	DueDate     *time.Time  `json:"dueDate"`
	ProjectID   string      `json:"projectId"`
	AssigneeID  *string     `json:"assigneeId"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Assignee    *UserRef    `json:"assignee,omitempty"`
	Project     *ProjectRef `json:"project,omitempty"`
}

// UserRef is the public view of an assignee.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProjectRef names the task's project and, in cross-project listings, its workspace.
type ProjectRef struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Workspace *WorkspaceRef `json:"workspace,omitempty"`
}

type WorkspaceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
