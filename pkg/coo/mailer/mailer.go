// Package mailer sends email notifications over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"
)

// ErrNotConfigured is returned when SMTP settings are absent.
var ErrNotConfigured = errors.New("mailer not configured")

// Config holds the SMTP settings.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Mailer sends plain text mail through one SMTP account.
type Mailer struct {
	config Config
	logger *slog.Logger
}

// NewMailer creates a mailer. With no host configured every Send
// fails with ErrNotConfigured.
func NewMailer(config Config, logger *slog.Logger) *Mailer {
	if config.Port == 0 {
		config.Port = 587
	}
	return &Mailer{
		config: config,
		logger: logger.With("component", "mailer"),
	}
}

// Configured reports whether SMTP settings are present.
func (m *Mailer) Configured() bool {
	return m.config.Host != "" && m.config.From != ""
}

// Send delivers a plain text message to the given recipients.
func (m *Mailer) Send(ctx context.Context, to []string, subject, body string) error {
	if !m.Configured() {
		return ErrNotConfigured
	}
	if len(to) == 0 {
		return errors.New("no recipients")
	}

	msg := mail.NewMsg()
	if err := msg.From(m.config.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(m.config.Port),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	}
	if m.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.config.Username),
			mail.WithPassword(m.config.Password),
		)
	}

	client, err := mail.NewClient(m.config.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	m.logger.Info("mail sent", "to", to, "subject", subject)
	return nil
}
