package notify

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// EmailService sends customer mail. Callers treat delivery as best-effort:
// failures are logged at the call site and never propagated.
type EmailService interface {
	SendEmail(to, subject, html, text string) error
}

// SMTPService delivers through an SMTP relay.
type SMTPService struct {
	dialer *gomail.Dialer
	from   string
}

// NewFromEnv picks the SMTP sender when SMTP_HOST is configured and a
// logging no-op otherwise, so local runs work without a relay.
func NewFromEnv() EmailService {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return &LogService{}
	}
	port := 587
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && p > 0 {
		port = p
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "no-reply@cardbase.local"
	}
	return &SMTPService{
		dialer: gomail.NewDialer(host, port, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASS")),
		from:   from,
	}
}

func (s *SMTPService) SendEmail(to, subject, html, text string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", html)
	return s.dialer.DialAndSend(m)
}

// LogService records instead of sending.
type LogService struct{}

func (s *LogService) SendEmail(to, subject, html, text string) error {
	log.Printf("email (not sent, SMTP unconfigured): to=%s subject=%q", to, subject)
	return nil
}
