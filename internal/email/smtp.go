package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPTransport delivers mail over plain SMTP. Relay auth is optional; the
// deployment's relay usually sits inside the same network.
type SMTPTransport struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPTransport(addr, from string, auth smtp.Auth) *SMTPTransport {
	return &SMTPTransport{addr: addr, from: from, auth: auth}
}

func (t *SMTPTransport) SendMail(ctx context.Context, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rcpts := append([]string{env.To}, env.CC...)
	rcpts = append(rcpts, env.BCC...)
	if err := smtp.SendMail(t.addr, t.auth, t.from, rcpts, buildMessage(t.from, env)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// buildMessage assembles the wire message. BCC recipients are delivered via
// the envelope alone, so no header names them.
func buildMessage(from string, env Envelope) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", env.To)
	if len(env.CC) > 0 {
		fmt.Fprintf(&b, "Cc: %s\r\n", strings.Join(env.CC, ", "))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", env.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(env.Body)
	return []byte(b.String())
}
