package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"crmtasks/internal/models"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) error
}

type taskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, title, type, related_table, related_id, due_at, status,
       description, tenant_id, created_at, updated_at`

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (
			title, type, related_table, related_id, due_at, status, description, tenant_id
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, query,
		task.Title, task.Type, task.RelatedTable, task.RelatedID,
		task.DueAt.UTC(), task.Status, task.Description, task.TenantID,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.GetContext(ctx, &task, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	baseQuery := `SELECT ` + taskColumns + ` FROM tasks`

	conditions := []string{}
	args := []interface{}{}
	argID := 1

	add := func(cond string, v interface{}) {
		conditions = append(conditions, fmt.Sprintf(cond, argID))
		args = append(args, v)
		argID++
	}

	if filter.DueFrom != nil {
		add("due_at >= $%d", filter.DueFrom.UTC())
	}
	if filter.DueTo != nil {
		add("due_at <= $%d", filter.DueTo.UTC())
	}
	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.ExcludeStatus != nil {
		add("status <> $%d", *filter.ExcludeStatus)
	}
	if filter.TenantID != nil {
		add("tenant_id = $%d", *filter.TenantID)
	}
	if filter.RelatedID != nil {
		add("related_id = $%d", *filter.RelatedID)
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY due_at ASC"

	tasks := []models.Task{}
	if err := r.db.SelectContext(ctx, &tasks, baseQuery, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// MarkCompleted flips status without checking the current one.
func (r *taskRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	var got uuid.UUID
	err := r.db.QueryRowxContext(ctx,
		`UPDATE tasks SET status=$1, updated_at=NOW() WHERE id=$2 RETURNING id`,
		models.StatusCompleted, id).Scan(&got)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("complete task: %w", err)
	}
	return nil
}
