package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// Mailer delivers a single HTML message.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// SMTP sends mail through an authenticated relay.
type SMTP struct {
	from   string
	dialer *gomail.Dialer
}

// NewSMTP creates an SMTP mailer. from defaults to user.
func NewSMTP(host string, port int, user, pass, from string) *SMTP {
	if from == "" {
		from = user
	}
	return &SMTP{from: from, dialer: gomail.NewDialer(host, port, user, pass)}
}

func (m *SMTP) Send(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// Log writes messages to the logger instead of sending them. Used when no
// relay credentials are configured.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (m *Log) Send(_ context.Context, to, subject, html string) error {
	m.logger.Info("mail not sent, no SMTP credentials", "to", to, "subject", subject, "body", html)
	return nil
}

// New picks SMTP when credentials are present and Log otherwise.
func New(host string, port int, user, pass, from string, logger *slog.Logger) Mailer {
	if user == "" || pass == "" {
		return NewLog(logger)
	}
	return NewSMTP(host, port, user, pass, from)
}
