package email

import (
	"fmt"
	"log/slog"
	"time"

	mail "github.com/go-mail/mail"
)

// Mailer delivers transactional email. Failures are never allowed to fail
// the primary operation; callers log and move on.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail over SMTP.
type SMTPMailer struct {
	host string
	port int
	user string
	pass string
	from string
}

// NewSMTPMailer builds an SMTP-backed mailer.
func NewSMTPMailer(host string, port int, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, user: user, pass: pass, from: from}
}

// Send dials the SMTP server and delivers a plain-text message. The dial has
// its own timeout so a slow provider cannot block a request goroutine.
func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := mail.NewDialer(m.host, m.port, m.user, m.pass)
	d.Timeout = 10 * time.Second

	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogMailer is a stub implementation that writes mail to the logger. Used in
// development when no SMTP host is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer constructs a logging mailer stub.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send writes the message to the structured logger.
func (m *LogMailer) Send(to, subject, body string) error {
	if m == nil || m.logger == nil {
		return nil
	}
	m.logger.Info("email", "to", to, "subject", subject, "body", body)
	return nil
}
