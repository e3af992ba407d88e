package domain

import (
	"errors"
	"strings"
	"time"

	"promanage/backend/internal/platform/optional"
)

// Field names as they appear in request payloads.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldPriority    = "priority"
	FieldStatus      = "status"
	FieldDueDate     = "dueDate"
	FieldAssigneeID  = "assigneeId"
)

// Patch is a partial task update. AssigneeID may be explicitly null to unassign.
type Patch struct {
	Title       optional.Value[string]    `json:"title"`
	Description optional.Value[string]    `json:"description"`
	Priority    optional.Value[Priority]  `json:"priority"`
	Status      optional.Value[Status]    `json:"status"`
	DueDate     optional.Value[time.Time] `json:"dueDate"`
	AssigneeID  optional.Value[string]    `json:"assigneeId"`
}

// Fields returns the names of every field present in the patch, in a fixed order.
func (p Patch) Fields() []string {
	var out []string
	if p.Title.Set {
		out = append(out, FieldTitle)
	}
	if p.Description.Set {
		out = append(out, FieldDescription)
	}
	if p.Priority.Set {
		out = append(out, FieldPriority)
	}
	if p.Status.Set {
		out = append(out, FieldStatus)
	}
	if p.DueDate.Set {
		out = append(out, FieldDueDate)
	}
	if p.AssigneeID.Set {
		out = append(out, FieldAssigneeID)
	}
	return out
}

// Validate checks present fields. Only assigneeId accepts null.
func (p Patch) Validate() error {
	if p.Title.Set && (p.Title.Null || len([]rune(strings.TrimSpace(p.Title.Value))) < MinTitleLength) {
		return errors.New("Title must be at least 2 characters")
	}
	if p.Description.Null {
		return errors.New("Description must be a string")
	}
	if p.Priority.Set && (p.Priority.Null || !p.Priority.Value.Valid()) {
		return errors.New("Priority must be one of LOW, MEDIUM, HIGH, CRITICAL")
	}
	if p.Status.Set && (p.Status.Null || !p.Status.Value.Valid()) {
		return errors.New("Status must be one of TODO, IN_PROGRESS, IN_REVIEW, DONE")
	}
	if p.DueDate.Null {
		return errors.New("Due date must be a valid ISO date")
	}
	if p.AssigneeID.Present() && p.AssigneeID.Value == "" {
		return errors.New("Assignee ID must not be empty")
	}
	return nil
}

// Apply copies present fields onto t.
func (p Patch) Apply(t *Task) {
	if p.Title.Present() {
		t.Title = strings.TrimSpace(p.Title.Value)
	}
	if p.Description.Present() {
		t.Description = p.Description.Value
	}
	if p.Priority.Present() {
		t.Priority = p.Priority.Value
	}
	if p.Status.Present() {
		t.Status = p.Status.Value
	}
	if p.DueDate.Present() {
		d := p.DueDate.Value.UTC()
		t.DueDate = &d
	}
	if p.AssigneeID.Set {
		if p.AssigneeID.Null {
			t.AssigneeID = nil
			t.Assignee = nil
		} else {
			id := p.AssigneeID.Value
			t.AssigneeID = &id
		}
	}
}
