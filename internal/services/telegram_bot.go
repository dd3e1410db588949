package services

import (
	"context"
	"fmt"
	"html"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"crmtasks/internal/models"
)

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramService posts task events into a single team chat.
type TelegramService struct {
	bot    telegramSender
	chatID int64
	loc    *time.Location
}

// NewTelegramService connects to the Bot API. It returns nil, nil when no
// token is configured.
func NewTelegramService(botToken string, chatID int64, loc *time.Location) (*TelegramService, error) {
	if botToken == "" || chatID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	log.Printf("[tg] authorized as @%s chat=%d", bot.Self.UserName, chatID)
	return newTelegramService(bot, chatID, loc), nil
}

func newTelegramService(bot telegramSender, chatID int64, loc *time.Location) *TelegramService {
	if loc == nil {
		loc = time.UTC
	}
	return &TelegramService{bot: bot, chatID: chatID, loc: loc}
}

func (t *TelegramService) SendMessage(text string) error {
	if t == nil || t.bot == nil || t.chatID == 0 {
		log.Printf("[tg][skip] bot or chatID empty")
		return nil
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram sendMessage failed: %w", err)
	}
	return nil
}

func (t *TelegramService) Notify(_ context.Context, event *models.TaskEvent) error {
	return t.SendMessage(t.formatEvent(event))
}

func (t *TelegramService) formatEvent(e *models.TaskEvent) string {
	prefix := "📌 New task"
	if e.Type == models.EventTaskCompleted {
		prefix = "✅ Task completed"
	}
	title := e.Title
	if title == "" {
		title = string(e.TaskType) + " task"
	}
	return prefix + "\n" +
		"• <b>" + html.EscapeString(title) + "</b>\n" +
		"• Type: <code>" + string(e.TaskType) + "</code>\n" +
		"• Due: <code>" + e.DueAt.In(t.loc).Format("2006-01-02 15:04") + "</code>\n" +
		"• Application: <code>" + html.EscapeString(e.ApplicationID) + "</code>"
}
