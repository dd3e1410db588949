package services

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"crmtasks/internal/models"
)

// RedisPublisher publishes task events on Redis pub/sub, one channel per
// event type under a common prefix.
type RedisPublisher struct {
	client rueidis.Client
	prefix string
}

func NewRedisPublisher(client rueidis.Client, prefix string) *RedisPublisher {
	return &RedisPublisher{client: client, prefix: prefix}
}

func (p *RedisPublisher) ChannelFor(e *models.TaskEvent) string {
	return p.prefix + e.Channel()
}

func (p *RedisPublisher) Notify(ctx context.Context, event *models.TaskEvent) error {
	payload, err := event.JSON()
	if err != nil {
		return err
	}
	cmd := p.client.B().Publish().Channel(p.ChannelFor(event)).Message(string(payload)).Build()
	if err := p.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}
