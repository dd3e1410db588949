package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType doubles as the notification channel name.
type EventType string

const (
	EventTaskCreated   EventType = "task.created"
	EventTaskCompleted EventType = "task.completed"
)

// TaskEvent is the payload broadcast when a task changes.
type TaskEvent struct {
	ID            uuid.UUID `json:"id"`
	Type          EventType `json:"type"`
	TaskID        uuid.UUID `json:"task_id"`
	ApplicationID string    `json:"application_id"`
	TaskType      TaskType  `json:"task_type"`
	Title         string    `json:"title,omitempty"`
	DueAt         time.Time `json:"due_at"`
	TenantID      *string   `json:"tenant_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewTaskEvent builds an event describing t.
func NewTaskEvent(typ EventType, t *Task) *TaskEvent {
	return &TaskEvent{
		ID:            uuid.New(),
		Type:          typ,
		TaskID:        t.ID,
		ApplicationID: t.RelatedID,
		TaskType:      t.Type,
		Title:         t.Title,
		DueAt:         t.DueAt.UTC(),
		TenantID:      t.TenantID,
		OccurredAt:    time.Now().UTC(),
	}
}

// Channel returns the broadcast channel for the event.
func (e *TaskEvent) Channel() string {
	return string(e.Type)
}

// JSON encodes the event for transports that carry raw text.
func (e *TaskEvent) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// ParseTaskEvent decodes a payload produced by JSON.
func ParseTaskEvent(data []byte) (*TaskEvent, error) {
	var e TaskEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
