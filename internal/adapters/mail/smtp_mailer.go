package mail

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"text/template"

	portssvc "github.com/SscSPs/food_rescue_app/internal/core/ports/services"
)

const resetSubject = "Reset your password"

var resetBody = template.Must(template.New("reset").Parse(
	"From: {{.From}}\r\n" +
		"To: {{.To}}\r\n" +
		"Subject: {{.Subject}}\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
		"\r\n" +
		"Follow this link to choose a new password:\r\n\r\n" +
		"{{.URL}}\r\n\r\n" +
		"If you did not ask for a reset you can ignore this email.\r\n",
))

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer delivers reset emails through an SMTP relay.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
	send SendFunc
}

// NewSMTPMailer creates a mailer for addr ("host:port"). Auth is PLAIN when username is set.
func NewSMTPMailer(addr, from, username, password string) (*SMTPMailer, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP address %q: %w", addr, err)
	}
	m := &SMTPMailer{addr: addr, from: from, send: smtp.SendMail}
	if username != "" {
		m.auth = smtp.PlainAuth("", username, password, host)
	}
	return m, nil
}

// WithSendFunc replaces smtp.SendMail.
func (m *SMTPMailer) WithSendFunc(send SendFunc) *SMTPMailer {
	m.send = send
	return m
}

var _ portssvc.Mailer = (*SMTPMailer)(nil)

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, email string, resetURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var msg bytes.Buffer
	err := resetBody.Execute(&msg, map[string]string{
		"From":    m.from,
		"To":      email,
		"Subject": resetSubject,
		"URL":     resetURL,
	})
	if err != nil {
		return fmt.Errorf("failed to render reset email: %w", err)
	}
	if err := m.send(m.addr, m.auth, m.from, []string{email}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}
