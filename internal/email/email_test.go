package email

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTransport captures delivered messages for assertions.
type recordingTransport struct {
	env   Envelope
	calls int
}

func (t *recordingTransport) SendMail(_ context.Context, env Envelope) error {
	t.env = env
	t.calls++
	return nil
}

func newSender(t *testing.T, transport Transport, allowlist []string, disabled bool) *TemplatedSender {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sender, err := NewTemplatedSender(transport, allowlist, disabled, logger)
	require.NoError(t, err)
	return sender
}

func TestSendRendersTemplates(t *testing.T) {
	transport := &recordingTransport{}
	sender := newSender(t, transport, nil, false)

	err := sender.Send(context.Background(), Message{
		BodyTemplate:    "submission_received.txt",
		SubjectTemplate: "submission_received_subject.txt",
		To:              "mayor@igorville.gov",
		Context: map[string]any{
			"RequesterName": "Igor Mayor",
			"DomainName":    "igorville.gov",
		},
		CC:  []string{"clerk@igorville.gov"},
		BCC: "ops@example.gov",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, transport.calls)
	assert.Equal(t, "mayor@igorville.gov", transport.env.To)
	assert.Equal(t, []string{"clerk@igorville.gov"}, transport.env.CC)
	assert.Equal(t, []string{"ops@example.gov"}, transport.env.BCC)
	assert.Equal(t, "Update on your .gov request: igorville.gov", transport.env.Subject)
	assert.Contains(t, transport.env.Body, "Hi, Igor Mayor.")
	assert.Contains(t, transport.env.Body, "igorville.gov")
}

func TestMessageHeadersOmitBCC(t *testing.T) {
	msg := string(buildMessage("help@get.gov", Envelope{
		To:      "mayor@igorville.gov",
		CC:      []string{"clerk@igorville.gov"},
		BCC:     []string{"ops@example.gov"},
		Subject: "Update on your .gov request",
		Body:    "The request moved forward.",
	}))

	assert.Contains(t, msg, "To: mayor@igorville.gov\r\n")
	assert.Contains(t, msg, "Cc: clerk@igorville.gov\r\n")
	assert.NotContains(t, msg, "ops@example.gov")
}

func TestSendRefusals(t *testing.T) {
	t.Run("disabled flag refuses before the transport", func(t *testing.T) {
		transport := &recordingTransport{}
		sender := newSender(t, transport, nil, true)

		err := sender.Send(context.Background(), Message{
			BodyTemplate:    "submission_received.txt",
			SubjectTemplate: "submission_received_subject.txt",
			To:              "mayor@igorville.gov",
		})
		var sendErr *SendingError
		require.ErrorAs(t, err, &sendErr)
		assert.Zero(t, transport.calls)
	})

	t.Run("allow-list refuses outside recipients", func(t *testing.T) {
		transport := &recordingTransport{}
		sender := newSender(t, transport, []string{"@igorville.gov"}, false)

		err := sender.Send(context.Background(), Message{
			BodyTemplate:    "submission_received.txt",
			SubjectTemplate: "submission_received_subject.txt",
			To:              "someone@example.com",
		})
		var sendErr *SendingError
		require.ErrorAs(t, err, &sendErr)
		assert.Zero(t, transport.calls)
	})

	t.Run("allow-list admits matching suffixes and exact addresses", func(t *testing.T) {
		transport := &recordingTransport{}
		sender := newSender(t, transport, []string{"@igorville.gov", "auditor@example.com"}, false)

		require.NoError(t, sender.Send(context.Background(), Message{
			BodyTemplate:    "submission_received.txt",
			SubjectTemplate: "submission_received_subject.txt",
			To:              "Mayor@Igorville.GOV",
		}))
		require.NoError(t, sender.Send(context.Background(), Message{
			BodyTemplate:    "submission_received.txt",
			SubjectTemplate: "submission_received_subject.txt",
			To:              "auditor@example.com",
		}))
		assert.Equal(t, 2, transport.calls)
	})

	t.Run("unknown template is an error", func(t *testing.T) {
		transport := &recordingTransport{}
		sender := newSender(t, transport, nil, false)

		err := sender.Send(context.Background(), Message{
			BodyTemplate:    "no_such_template.txt",
			SubjectTemplate: "submission_received_subject.txt",
			To:              "mayor@igorville.gov",
		})
		require.Error(t, err)
		assert.Zero(t, transport.calls)
	})
}

func TestEveryTemplateParses(t *testing.T) {
	transport := &recordingTransport{}
	sender := newSender(t, transport, nil, false)

	ctxData := map[string]any{
		"RequesterName":    "Igor Mayor",
		"DomainName":       "igorville.gov",
		"OrganizationName": "City of Igorville",
		"Content":          "Please clarify your request.",
	}
	bodies := []string{
		"submission_received.txt",
		"request_approved.txt",
		"request_withdrawn.txt",
		"action_needed_eligibility.txt",
		"action_needed_questionable_senior_official.txt",
		"action_needed_already_has_domains.txt",
		"action_needed_bad_name.txt",
		"custom_content.txt",
		"rejection_domain_purpose.txt",
		"rejection_requestor.txt",
		"rejection_second_domain.txt",
		"rejection_org_legitimacy.txt",
		"rejection_org_eligibility.txt",
		"rejection_naming_requirements.txt",
		"rejection_other.txt",
	}
	for _, body := range bodies {
		err := sender.Send(context.Background(), Message{
			BodyTemplate:    body,
			SubjectTemplate: "rejection_subject.txt",
			To:              "mayor@igorville.gov",
			Context:         ctxData,
		})
		assert.NoError(t, err, body)
	}
}
