// Package email is the outbound notification boundary. Callers name a body
// and subject template; rendering, the non-production allow-list, and the
// global kill switch all live here so transition code never has to know
// whether a real message leaves the building.
package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"text/template"
)

//go:embed templates/*.txt
var templateFS embed.FS

// Message is one outbound email. Context feeds both templates.
type Message struct {
	BodyTemplate    string
	SubjectTemplate string
	To              string
	Context         map[string]any
	CC              []string
	BCC             string
}

// SendingError is raised before any send attempt when the boundary refuses
// the message: sending disabled, or the recipient is outside the allow-list.
type SendingError struct {
	Reason string
}

func (e *SendingError) Error() string {
	return "email not sent: " + e.Reason
}

// Sender delivers templated messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Envelope is one rendered message ready for the wire. BCC addresses ride in
// the envelope recipient list only and never appear in a header.
type Envelope struct {
	To      string
	CC      []string
	BCC     []string
	Subject string
	Body    string
}

// Transport carries a rendered message to the mail system.
type Transport interface {
	SendMail(ctx context.Context, env Envelope) error
}

// TemplatedSender renders embedded templates and enforces the allow-list and
// disabled flag before handing off to the transport.
type TemplatedSender struct {
	transport Transport
	// allowlist holds recipient suffix patterns, e.g. "@igorville.gov" or a
	// full address. A nil allowlist permits every recipient; an empty one
	// permits none. Production runs with nil.
	allowlist []string
	disabled  bool
	templates *template.Template
	logger    *slog.Logger
}

func NewTemplatedSender(transport Transport, allowlist []string, disabled bool, logger *slog.Logger) (*TemplatedSender, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &TemplatedSender{
		transport: transport,
		allowlist: allowlist,
		disabled:  disabled,
		templates: templates,
		logger:    logger,
	}, nil
}

// Send renders and delivers one message. Refusals raise *SendingError before
// the transport is touched.
func (s *TemplatedSender) Send(ctx context.Context, msg Message) error {
	if s.disabled {
		return &SendingError{Reason: "sending is disabled"}
	}
	if !s.allowed(msg.To) {
		return &SendingError{Reason: fmt.Sprintf("recipient %s is not in the allow-list", msg.To)}
	}

	subject, err := s.render(msg.SubjectTemplate, msg.Context)
	if err != nil {
		return err
	}
	body, err := s.render(msg.BodyTemplate, msg.Context)
	if err != nil {
		return err
	}

	env := Envelope{
		To:      msg.To,
		CC:      msg.CC,
		Subject: strings.TrimSpace(subject),
		Body:    body,
	}
	if msg.BCC != "" {
		env.BCC = []string{msg.BCC}
	}
	if err := s.transport.SendMail(ctx, env); err != nil {
		return fmt.Errorf("send %s to %s: %w", msg.BodyTemplate, msg.To, err)
	}
	s.logger.InfoContext(ctx, "email sent", "template", msg.BodyTemplate, "to", msg.To)
	return nil
}

func (s *TemplatedSender) allowed(to string) bool {
	if s.allowlist == nil {
		return true
	}
	lower := strings.ToLower(to)
	for _, pattern := range s.allowlist {
		p := strings.ToLower(pattern)
		if lower == p || strings.HasSuffix(lower, p) {
			return true
		}
	}
	return false
}

func (s *TemplatedSender) render(name string, data map[string]any) (string, error) {
	tmpl := s.templates.Lookup(path.Base(name))
	if tmpl == nil {
		return "", fmt.Errorf("email template %s not found", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email template %s: %w", name, err)
	}
	return buf.String(), nil
}
