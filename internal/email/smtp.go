package email

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	mail "gopkg.in/mail.v2"
)

// SMTPTransport delivers mail through an SMTP relay. Gmail is the only
// SMTP-backed provider currently resolved, but the transport itself is
// host-agnostic.
type SMTPTransport struct {
	kind   TransportKind
	dialer *mail.Dialer
}

func NewSMTPTransport(kind TransportKind, host string, port int, username, password string) *SMTPTransport {
	return &SMTPTransport{
		kind:   kind,
		dialer: mail.NewDialer(host, port, username, password),
	}
}

// NewGmailTransport wires the Gmail SMTP relay with an app password.
func NewGmailTransport(user, password string) *SMTPTransport {
	return NewSMTPTransport(TransportGmail, "smtp.gmail.com", 587, user, password)
}

func (t *SMTPTransport) Kind() TransportKind {
	return t.kind
}

// Verify opens and closes an authenticated connection without sending.
func (t *SMTPTransport) Verify(ctx context.Context) error {
	closer, err := t.dialer.Dial()
	if err != nil {
		return fmt.Errorf("smtp dial failed: %w", err)
	}
	return closer.Close()
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) (string, error) {
	m := mail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := t.dialer.DialAndSend(m); err != nil {
		return "", fmt.Errorf("smtp send failed: %w", err)
	}
	// SMTP does not echo a message ID back; fabricate a stable-format one.
	return fmt.Sprintf("<%s@formflow>", uuid.New().String()), nil
}
