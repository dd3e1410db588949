package services

import (
	"context"
	"fmt"
	"html"
	"time"

	"gopkg.in/gomail.v2"

	"crmtasks/internal/models"
)

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailService mails new-task notices to a team inbox.
type EmailService struct {
	dialer mailSender
	from   string
	to     string
	loc    *time.Location
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail, toEmail string, loc *time.Location) *EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return newEmailService(dialer, fromEmail, toEmail, loc)
}

func newEmailService(dialer mailSender, from, to string, loc *time.Location) *EmailService {
	if loc == nil {
		loc = time.UTC
	}
	return &EmailService{dialer: dialer, from: from, to: to, loc: loc}
}

// Notify only mails task.created; completions are not worth an inbox entry.
func (s *EmailService) Notify(_ context.Context, event *models.TaskEvent) error {
	if event.Type != models.EventTaskCreated {
		return nil
	}
	m := s.buildMessage(event)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send task email: %w", err)
	}
	return nil
}

func (s *EmailService) buildMessage(e *models.TaskEvent) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to)
	m.SetHeader("Subject", fmt.Sprintf("New %s task for application %s", e.TaskType, e.ApplicationID))

	body := fmt.Sprintf(`
		<h3>%s</h3>
		<p>Type: <strong>%s</strong></p>
		<p>Due: <strong>%s</strong></p>
		<p>Application: <code>%s</code></p>
	`, html.EscapeString(e.Title), e.TaskType,
		e.DueAt.In(s.loc).Format("02.01.2006 15:04"),
		html.EscapeString(e.ApplicationID))

	m.SetBody("text/html", body)
	return m
}
