package services

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/rueidis/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"crmtasks/internal/models"
)

func TestRedisPublisher_ChannelFor(t *testing.T) {
	p := NewRedisPublisher(nil, "crm:")
	assert.Equal(t, "crm:task.created", p.ChannelFor(sampleEvent(models.EventTaskCreated)))
	assert.Equal(t, "crm:task.completed", p.ChannelFor(sampleEvent(models.EventTaskCompleted)))
}

func TestRedisPublisher_Notify(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)
	e := sampleEvent(models.EventTaskCreated)
	payload, err := e.JSON()
	require.NoError(t, err)

	client.EXPECT().
		Do(gomock.Any(), mock.Match("PUBLISH", "crm:task.created", string(payload))).
		Return(mock.Result(mock.RedisInt64(1)))

	require.NoError(t, NewRedisPublisher(client, "crm:").Notify(context.Background(), e))
}

func TestRedisPublisher_NotifyError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)
	e := sampleEvent(models.EventTaskCompleted)
	payload, err := e.JSON()
	require.NoError(t, err)
	down := errors.New("connection refused")

	client.EXPECT().
		Do(gomock.Any(), mock.Match("PUBLISH", "crm:task.completed", string(payload))).
		Return(mock.ErrorResult(down))

	err = NewRedisPublisher(client, "crm:").Notify(context.Background(), e)
	require.Error(t, err)
	assert.ErrorIs(t, err, down)
	assert.Contains(t, err.Error(), "redis publish")
}
