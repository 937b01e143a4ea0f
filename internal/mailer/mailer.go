package mailer

import (
	"gopkg.in/gomail.v2" // SMTP client
)

// Mailer sends confirmation-code emails over SMTP
type Mailer struct {
	dialer *gomail.Dialer // SMTP connection settings
	from   string         // Sender address
}

// New builds a Mailer for the given SMTP server and sender address
func New(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password), // SMTP dialer
		from:   from,                                             // Sender address
	}
}

// Send dispatches a plain-text email. Callers on the auth path treat the
// returned error as best-effort only: a mail outage must never block login.
func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()          // New message
	msg.SetHeader("From", m.from)       // Sender
	msg.SetHeader("To", to)             // Recipient
	msg.SetHeader("Subject", subject)   // Subject line
	msg.SetBody("text/plain", body)     // Plain-text body
	return m.dialer.DialAndSend(msg)    // Connect and send
}
