package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"exchange-rate-monitor/pkg/logger"
)

// SMTPMailer sends plain-text mail to the single configured recipient over
// SMTP with STARTTLS.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	to     string
	log    *logger.Logger
}

func NewSMTPMailer(host string, port int, sender, password, recipient string, log *logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, sender, password),
		from:   sender,
		to:     recipient,
		log:    log,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	m.log.Info("Mail sent", "to", m.to, "subject", subject)
	return nil
}
