// internal/services/task_service.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"crmtasks/internal/models"
	"crmtasks/internal/repositories"
)

// TaskService defines the interface for task-related business logic.
type TaskService interface {
	Create(ctx context.Context, in *models.CreateTaskInput) (*models.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	ListDueToday(ctx context.Context, opts TodayOptions) ([]models.Task, error)
	Complete(ctx context.Context, id uuid.UUID) error
	Location() *time.Location
}

// TodayOptions narrows the due-today listing.
type TodayOptions struct {
	IncludeCompleted bool
	TenantID         *string
}

type taskService struct {
	repo     repositories.TaskRepository
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
}

// NewTaskService creates a new instance of TaskService. "Today" is computed in
// loc. notifier may be nil.
func NewTaskService(repo repositories.TaskRepository, notifier Notifier, loc *time.Location) TaskService {
	if loc == nil {
		loc = time.UTC
	}
	return &taskService{repo: repo, notifier: notifier, loc: loc, now: time.Now}
}

func (s *taskService) Location() *time.Location { return s.loc }

func (s *taskService) Create(ctx context.Context, in *models.CreateTaskInput) (*models.Task, error) {
	v, err := ValidateCreate(in, s.now(), s.loc)
	if err != nil {
		return nil, err
	}

	title := string(v.Type) + " task"
	if t, ok := in.Title.Text(); ok && t != "" {
		title = t
	}
	var description, tenant *string
	if d, ok := in.Description.Text(); ok {
		description = &d
	}
	if t, ok := in.TenantID.Text(); ok && t != "" {
		tenant = &t
	}

	task := &models.Task{
		Title:        title,
		Type:         v.Type,
		RelatedTable: models.RelatedApplications,
		RelatedID:    v.ApplicationID,
		DueAt:        v.DueAt.UTC(),
		Status:       models.StatusPending,
		Description:  description,
		TenantID:     tenant,
	}
	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}

	s.emit(ctx, models.EventTaskCreated, task)
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *taskService) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	return s.repo.FindAll(ctx, filter)
}

func (s *taskService) ListDueToday(ctx context.Context, opts TodayOptions) ([]models.Task, error) {
	start, end := DayBounds(s.now(), s.loc)
	filter := models.TaskFilter{
		DueFrom:  &start,
		DueTo:    &end,
		TenantID: opts.TenantID,
	}
	if !opts.IncludeCompleted {
		completed := models.StatusCompleted
		filter.ExcludeStatus = &completed
	}
	return s.repo.FindAll(ctx, filter)
}

func (s *taskService) Complete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkCompleted(ctx, id); err != nil {
		return err
	}
	if s.notifier == nil {
		return nil
	}
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.Printf("[task][complete][warn] reload id=%s for event: %v", id, err)
		return nil
	}
	if task == nil {
		log.Printf("[task][complete][warn] reload id=%s for event: row gone", id)
		return nil
	}
	s.emit(ctx, models.EventTaskCompleted, task)
	return nil
}

// emit is best effort: the task is already stored.
func (s *taskService) emit(ctx context.Context, typ models.EventType, t *models.Task) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, models.NewTaskEvent(typ, t)); err != nil {
		log.Printf("[task][notify][warn] event=%s id=%s: %v", typ, t.ID, err)
	}
}

// DayBounds returns the first and last instant of the calendar day containing
// now in loc.
func DayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}
