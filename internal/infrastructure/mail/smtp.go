// Package mail delivers customer emails.
package mail

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"fishy-friend-storefront/internal/ports"

	"github.com/rs/zerolog"
)

// SMTPConfig points at the outgoing mail server.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPMailer sends plain-text email with PLAIN auth.
type SMTPMailer struct {
	cfg    SMTPConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	now    func() time.Time
	logger zerolog.Logger
}

var _ ports.Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(cfg SMTPConfig, logger zerolog.Logger) *SMTPMailer {
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail, now: time.Now, logger: logger}
}

func (m *SMTPMailer) Send(ctx context.Context, email ports.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.From, []string{email.To}, m.message(email)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	m.logger.Debug().Str("to", email.To).Str("subject", email.Subject).Msg("Email sent")
	return nil
}

func (m *SMTPMailer) message(email ports.Email) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", email.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", email.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(email.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// LogMailer writes emails to the log instead of sending them. It is used
// when no SMTP server is configured.
type LogMailer struct {
	logger zerolog.Logger
}

var _ ports.Mailer = LogMailer{}

func NewLogMailer(logger zerolog.Logger) LogMailer {
	return LogMailer{logger: logger}
}

func (m LogMailer) Send(_ context.Context, email ports.Email) error {
	m.logger.Info().Str("to", email.To).Str("subject", email.Subject).Str("body", email.Body).Msg("Email (not sent, SMTP not configured)")
	return nil
}
