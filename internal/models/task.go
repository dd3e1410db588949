// internal/models/task.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskType defines the kind of follow-up action a task represents.
type TaskType string

const (
	TypeCall   TaskType = "call"
	TypeEmail  TaskType = "email"
	TypeReview TaskType = "review"
)

// AllowedTaskTypes is the ordered set accepted at creation time.
var AllowedTaskTypes = []TaskType{TypeCall, TypeEmail, TypeReview}

func (t TaskType) Valid() bool {
	for _, a := range AllowedTaskTypes {
		if t == a {
			return true
		}
	}
	return false
}

// TaskStatus defines the possible statuses for a task.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

// RelatedApplications is the only related table this service writes.
const RelatedApplications = "applications"

// Task represents a follow-up action tied to an application.
type Task struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Title        string     `json:"title" db:"title"`
	Type         TaskType   `json:"type" db:"type"`
	RelatedTable string     `json:"related_table" db:"related_table"`
	RelatedID    string     `json:"related_id" db:"related_id"`
	DueAt        time.Time  `json:"due_at" db:"due_at"`
	Status       TaskStatus `json:"status" db:"status"`
	Description  *string    `json:"description" db:"description"`
	TenantID     *string    `json:"tenant_id,omitempty" db:"tenant_id"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// IsCompleted reports whether the task has been marked done.
func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// TaskFilter defines the available parameters for filtering tasks.
// Nil fields are not applied.
type TaskFilter struct {
	DueFrom       *time.Time
	DueTo         *time.Time
	Status        *TaskStatus
	ExcludeStatus *TaskStatus
	TenantID      *string
	RelatedID     *string
}

// CreateTaskInput is the create-task request body. Fields keep whatever JSON
// type the caller sent.
type CreateTaskInput struct {
	ApplicationID Value `json:"application_id" swaggertype:"string"`
	TaskType      Value `json:"task_type" swaggertype:"string"`
	DueAt         Value `json:"due_at" swaggertype:"string"`
	Title         Value `json:"title" swaggertype:"string"`
	Description   Value `json:"description" swaggertype:"string"`
	TenantID      Value `json:"tenant_id" swaggertype:"string"`
}
