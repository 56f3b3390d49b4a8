// Package mailer delivers password reset links.
package mailer

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"
)

// Mailer sends a password reset link to an address
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

// SMTPConfig holds the outgoing mail server settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// dialer is the part of gomail.Dialer used for delivery
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends mail through an SMTP server
type SMTPMailer struct {
	from   string
	dialer dialer
	logger *slog.Logger
}

// NewSMTPMailer creates a mailer for cfg
func NewSMTPMailer(cfg SMTPConfig, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
	}
}

var resetTemplate = template.Must(template.New("reset").Parse(`<div dir="rtl" style="font-family:Cairo,sans-serif">
<p>لإعادة تعيين كلمة المرور اضغط على الرابط التالي:</p>
<p><a href="{{.}}">{{.}}</a></p>
<p>ينتهي الرابط خلال ساعة واحدة.</p>
</div>`))

// SendPasswordReset emails the reset link
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	var body strings.Builder
	if err := resetTemplate.Execute(&body, link); err != nil {
		return fmt.Errorf("render reset email: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "إعادة تعيين كلمة المرور")
	msg.SetBody("text/plain", "Reset your password: "+link)
	msg.AddAlternative("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}

	m.logger.Info("reset email sent", "to", to)
	return nil
}

// LogMailer writes reset links to the log when no mail transport is configured
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a mailer that only logs
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	m.logger.Warn("no SMTP configured, reset link logged instead of emailed", "to", to, "link", link)
	return nil
}
