package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/medicore/clinic-api/internal/config"
)

// Service sends transactional email. Delivery is best-effort; callers
// never fail a request on a send error.
type Service interface {
	Send(to, subject, body string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.EmailConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type noopService struct{}

// NewNoopService returns a sender that drops all mail, for deployments
// without SMTP configured.
func NewNoopService() Service {
	return noopService{}
}

func (noopService) Send(_, _, _ string) error { return nil }
