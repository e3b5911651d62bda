package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/config"
)

// Mailer delivers outbound notifications. Deliveries are best-effort;
// callers log failures instead of failing their own operation.
type Mailer interface {
	Send(to, subject, body string) error
}

type SMTPMailer struct {
	conf config.SMTPConfig
}

func NewSMTPMailer(conf config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		conf: conf,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", m.conf.SenderName)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/html", body)

	dialer := gomail.NewDialer(m.conf.Host, m.conf.Port, m.conf.Email, m.conf.Password)
	if err := dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("dialer.DialAndSend -> %w", err)
	}

	return nil
}
