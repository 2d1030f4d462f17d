package notifications

import (
	"fmt"
	"net/smtp"
)

// SMTPSender delivers notifications through a plain SMTP relay, for tenants
// where the management API identity has no mailbox permission.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
}

func (s *SMTPSender) Send(mail Email) error {
	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	msg := []byte("To: " + mail.To + "\r\n" +
		"From: " + mail.From + "\r\n" +
		"Subject: " + mail.Subject + "\r\n" +
		"\r\n" +
		mail.Body + "\r\n")

	serverAddr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	return smtp.SendMail(serverAddr, auth, mail.From, []string{mail.To}, msg)
}
