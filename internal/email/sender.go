package email

import (
	"fmt"

	"algocamp_backend/internal/config"

	"gopkg.in/gomail.v2"
)

// Sender delivers transactional mail over SMTP.
type Sender struct {
	cfg *config.Config
}

func NewSender(cfg *config.Config) *Sender {
	return &Sender{cfg: cfg}
}

func (s *Sender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Email.FromEmail, s.cfg.Email.FromName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		s.cfg.Email.SMTPHost,
		s.cfg.Email.SMTPPort,
		s.cfg.Email.SMTPUsername,
		s.cfg.Email.SMTPPassword,
	)

	return d.DialAndSend(m)
}

// SendConfirmation acknowledges a received application.
func (s *Sender) SendConfirmation(to, name string) error {
	subject := "We received your application"
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Thank you for applying. Your application has been received and
		will be reviewed shortly. We will contact you at this address.</p>
		<p>— The AlgoCamp team</p>`, name)
	return s.Send(to, subject, body)
}
