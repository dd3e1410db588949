package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// NotificationRepository raises store-side notifications that LISTENers on
// the same database receive.
type NotificationRepository interface {
	Broadcast(ctx context.Context, channel string, payload []byte) error
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Broadcast(ctx context.Context, channel string, payload []byte) error {
	if _, err := r.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, channel, string(payload)); err != nil {
		return fmt.Errorf("broadcast %s: %w", channel, err)
	}
	return nil
}
