package service

import (
	"github.com/somonity/accounts/config"
	"gopkg.in/gomail.v2"
)

// EmailSender delivers a message to a set of addresses
type EmailSender interface {
	Send(to []string, subject, htmlBody string) error
}

// EmailService sends HTML mail over SMTP
type EmailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *EmailService) Send(to []string, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	return s.dialer.DialAndSend(m)
}
