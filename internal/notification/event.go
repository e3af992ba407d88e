// Package notification carries side-effect events (task assignment, status
// changes, project deletion) from services to pluggable sinks.
package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type names an event kind. Values double as Kafka keys and Loki labels.
type Type string

const (
	TypeTaskAssigned      Type = "task.assigned"
	TypeTaskStatusChanged Type = "task.status_changed"
	TypeProjectDeleted    Type = "project.deleted"
)

// Event is a single notification. Payload keys depend on Type.
type Event struct {
	ID         string            `json:"id"`
	Type       Type              `json:"type"`
	OccurredAt time.Time         `json:"occurredAt"`
	Payload    map[string]string `json:"payload"`
}

func newEvent(t Type, payload map[string]string) Event {
	return Event{ID: uuid.New().String(), Type: t, OccurredAt: time.Now().UTC(), Payload: payload}
}

// TaskAssigned is raised when a task gains a (new) assignee.
func TaskAssigned(taskID, taskTitle, assigneeEmail, assignedBy string) Event {
	return newEvent(TypeTaskAssigned, map[string]string{
		"taskId":        taskID,
		"taskTitle":     taskTitle,
		"assigneeEmail": assigneeEmail,
		"assignedBy":    assignedBy,
	})
}

// TaskStatusChanged is raised when a task's status actually changes.
func TaskStatusChanged(taskID, oldStatus, newStatus, changedBy string) Event {
	return newEvent(TypeTaskStatusChanged, map[string]string{
		"taskId":    taskID,
		"oldStatus": oldStatus,
		"newStatus": newStatus,
		"changedBy": changedBy,
	})
}

// ProjectDeleted is raised after a project and its tasks are removed.
func ProjectDeleted(projectID, projectName, deletedBy string) Event {
	return newEvent(TypeProjectDeleted, map[string]string{
		"projectId":   projectID,
		"projectName": projectName,
		"deletedBy":   deletedBy,
	})
}

// Message renders the human-readable notification line.
func (e Event) Message() string {
	p := e.Payload
	switch e.Type {
	case TypeTaskAssigned:
		return fmt.Sprintf("Task %q (ID: %s) assigned to %s by %s", p["taskTitle"], p["taskId"], p["assigneeEmail"], p["assignedBy"])
	case TypeTaskStatusChanged:
		return fmt.Sprintf("Task #%s moved from %q to %q by %s", p["taskId"], p["oldStatus"], p["newStatus"], p["changedBy"])
	case TypeProjectDeleted:
		return fmt.Sprintf("Project %q (ID: %s) deleted by %s", p["projectName"], p["projectId"], p["deletedBy"])
	}
	return string(e.Type)
}
