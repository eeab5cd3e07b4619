// Package mailer sends notification emails. Delivery is best-effort: the
// fan-out logs and swallows every error returned from here.
package mailer

import (
	"gopkg.in/gomail.v2"
)

// Mailer accepts a recipient address, subject and both body variants and
// attempts delivery.
type Mailer interface {
	Send(to, subject, textBody, htmlBody string) error
}

// SMTPConfig holds the mail transport settings resolved from the environment.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTP builds a Mailer backed by an SMTP dialer.
func NewSMTP(cfg SMTPConfig) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *smtpMailer) Send(to, subject, textBody, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", textBody)
	if htmlBody != "" {
		msg.AddAlternative("text/html", htmlBody)
	}
	return m.dialer.DialAndSend(msg)
}

// Noop discards every message. Used when SMTP is not configured and in tests.
type Noop struct{}

func (Noop) Send(to, subject, textBody, htmlBody string) error {
	return nil
}
