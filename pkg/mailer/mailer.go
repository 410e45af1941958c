package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/astrein-exzellent/lagerhub-backend/pkg/config"
)

// Sender delivers plain-text mail. Satisfied by *SMTPMailer and by test fakes.
type Sender interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// SMTPMailer sends mail through a configured SMTP relay.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

// New builds an SMTP mailer. Returns nil when the relay is not configured,
// callers treat a nil mailer as "notifications disabled".
func New(cfg config.SMTPConfig) *SMTPMailer {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil
	}
	return &SMTPMailer{cfg: cfg}
}

// Send delivers a plain-text message to the given recipients.
func (m *SMTPMailer) Send(ctx context.Context, to []string, subject, body string) error {
	if m == nil {
		return fmt.Errorf("mailer not configured")
	}
	if len(to) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}

	msg := buildMessage(from, to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, from, to, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
