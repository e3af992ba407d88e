package domain

import (
	"strings"
	"time"
)

// MinNameLength is the shortest accepted workspace name.
const MinNameLength = 2

// Workspace is a tenant container owned by one user.
type Workspace struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	OwnerID      string       `json:"ownerId"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	ProjectCount *int         `json:"projectCount,omitempty"`
	Owner        *OwnerRef    `json:"owner,omitempty"`
	Projects     []ProjectRef `json:"projects,omitempty"`
}

// OwnerRef is the public view of the owning user.
type OwnerRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProjectRef is a project listed inside its workspace.
type ProjectRef struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ValidName reports whether name is long enough after trimming.
func ValidName(name string) bool {
	return len([]rune(strings.TrimSpace(name))) >= MinNameLength
}
