package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"crmtasks/internal/models"
)

func sampleEvent(typ models.EventType) *models.TaskEvent {
	return models.NewTaskEvent(typ, &models.Task{
		ID:        uuid.New(),
		Title:     "Call <Acme>",
		Type:      models.TypeCall,
		RelatedID: "app-3",
		DueAt:     time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC),
	})
}

func TestMultiNotifier_DeliversToAllAndReturnsFirstError(t *testing.T) {
	first := errors.New("first")
	var calls []string
	m := NewMultiNotifier(
		NotifierFunc(func(context.Context, *models.TaskEvent) error { calls = append(calls, "a"); return first }),
		nil,
		NotifierFunc(func(context.Context, *models.TaskEvent) error {
			calls = append(calls, "b")
			return errors.New("second")
		}),
		NotifierFunc(func(context.Context, *models.TaskEvent) error { calls = append(calls, "c"); return nil }),
	)
	assert.Equal(t, 3, m.Len())

	err := m.Notify(context.Background(), sampleEvent(models.EventTaskCreated))
	assert.Equal(t, first, err)
	assert.Equal(t, []string{"a", "b", "c"}, calls)
}

type fakeBroadcastRepo struct {
	channel string
	payload []byte
}

func (f *fakeBroadcastRepo) Broadcast(_ context.Context, channel string, payload []byte) error {
	f.channel, f.payload = channel, payload
	return nil
}

func TestBroadcastNotifier(t *testing.T) {
	repo := &fakeBroadcastRepo{}
	e := sampleEvent(models.EventTaskCreated)

	require.NoError(t, NewBroadcastNotifier(repo).Notify(context.Background(), e))
	assert.Equal(t, "task.created", repo.channel)

	decoded, err := models.ParseTaskEvent(repo.payload)
	require.NoError(t, err)
	assert.Equal(t, e.TaskID, decoded.TaskID)
	assert.Equal(t, "app-3", decoded.ApplicationID)
}

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		b.sent = append(b.sent, msg)
	}
	return tgbotapi.Message{}, b.err
}

func TestTelegramService_Notify(t *testing.T) {
	bot := &fakeBot{}
	svc := newTelegramService(bot, 42, time.FixedZone("ALMT", 5*3600))

	require.NoError(t, svc.Notify(context.Background(), sampleEvent(models.EventTaskCreated)))
	require.Len(t, bot.sent, 1)
	msg := bot.sent[0]
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Contains(t, msg.Text, "New task")
	assert.Contains(t, msg.Text, "Call &lt;Acme&gt;")
	assert.Contains(t, msg.Text, "2026-10-17 17:00")

	require.NoError(t, svc.Notify(context.Background(), sampleEvent(models.EventTaskCompleted)))
	assert.Contains(t, bot.sent[1].Text, "Task completed")
}

func TestTelegramService_SendError(t *testing.T) {
	svc := newTelegramService(&fakeBot{err: errors.New("403")}, 42, nil)
	assert.Error(t, svc.SendMessage("hi"))
}

func TestTelegramService_NilIsNoop(t *testing.T) {
	var svc *TelegramService
	assert.NoError(t, svc.SendMessage("hi"))
}

type fakeDialer struct {
	msgs []*gomail.Message
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.msgs = append(d.msgs, m...)
	return nil
}

func TestEmailService_Notify(t *testing.T) {
	d := &fakeDialer{}
	svc := newEmailService(d, "crm@example.com", "team@example.com", time.UTC)

	require.NoError(t, svc.Notify(context.Background(), sampleEvent(models.EventTaskCreated)))
	require.Len(t, d.msgs, 1)
	m := d.msgs[0]
	assert.Equal(t, []string{"team@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"New call task for application app-3"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "17.10.2026 12:00")

	require.NoError(t, svc.Notify(context.Background(), sampleEvent(models.EventTaskCompleted)))
	assert.Len(t, d.msgs, 1)
}
