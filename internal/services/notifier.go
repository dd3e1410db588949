package services

import (
	"context"
	"log"

	"crmtasks/internal/models"
	"crmtasks/internal/repositories"
)

// Notifier delivers task events to one destination.
type Notifier interface {
	Notify(ctx context.Context, event *models.TaskEvent) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, event *models.TaskEvent) error

func (f NotifierFunc) Notify(ctx context.Context, event *models.TaskEvent) error {
	return f(ctx, event)
}

// MultiNotifier sends an event to every notifier. A failing notifier does not
// stop the rest; the first error is returned.
type MultiNotifier struct {
	notifiers []Notifier
}

func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	m := &MultiNotifier{}
	for _, n := range notifiers {
		m.Add(n)
	}
	return m
}

func (m *MultiNotifier) Add(n Notifier) {
	if n != nil {
		m.notifiers = append(m.notifiers, n)
	}
}

func (m *MultiNotifier) Len() int { return len(m.notifiers) }

func (m *MultiNotifier) Notify(ctx context.Context, event *models.TaskEvent) error {
	var firstErr error
	for i, n := range m.notifiers {
		if err := n.Notify(ctx, event); err != nil {
			log.Printf("[notify][err] notifier=%d event=%s task=%s: %v", i, event.Type, event.TaskID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// BroadcastNotifier raises the event as a store-side notification on the
// channel named after the event type.
type BroadcastNotifier struct {
	repo repositories.NotificationRepository
}

func NewBroadcastNotifier(repo repositories.NotificationRepository) *BroadcastNotifier {
	return &BroadcastNotifier{repo: repo}
}

func (b *BroadcastNotifier) Notify(ctx context.Context, event *models.TaskEvent) error {
	payload, err := event.JSON()
	if err != nil {
		return err
	}
	return b.repo.Broadcast(ctx, event.Channel(), payload)
}
