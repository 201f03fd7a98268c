package audit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "registrar/pkg/domain"
	"registrar/pkg/requestcontext"
)

func TestEmitStampsContextMetadata(t *testing.T) {
	store := NewMemoryStore()
	publisher := NewPublisher(store)

	actor := id.NewUserID()
	ctx := requestcontext.WithUserID(context.Background(), actor)
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.9", "registrar-admin/1.0")

	err := publisher.Emit(ctx, Event{
		Action:    ActionRequestApprove,
		Subject:   "igorville.gov",
		FromState: "in review",
		ToState:   "approved",
	})
	require.NoError(t, err)

	events := store.Events()
	require.Len(t, events, 1)
	got := events[0]
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.False(t, got.Timestamp.IsZero())
	assert.Equal(t, actor, got.ActorID)
	assert.Equal(t, "203.0.113.9", got.ClientIP)
	assert.Equal(t, "registrar-admin/1.0", got.UserAgent)
}

func TestOutboxPendingLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	publisher := NewPublisher(store)

	require.NoError(t, publisher.Emit(ctx, Event{Action: ActionDomainRenew, Subject: "igorville.gov"}))
	require.NoError(t, publisher.Emit(ctx, Event{Action: ActionDomainHold, Subject: "townville.gov"}))

	pending, err := store.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "igorville.gov", pending[0].Subject)
	assert.JSONEq(t, `{
		"id": "`+pending[0].ID.String()+`",
		"action": "domain.renew",
		"subject": "igorville.gov",
		"from_state": "",
		"to_state": "",
		"detail": "",
		"timestamp": "`+store.Events()[0].Timestamp.Format("2006-01-02T15:04:05.999999999Z07:00")+`"
	}`, string(pending[0].Payload))

	require.NoError(t, store.MarkPublished(ctx, []uuid.UUID{pending[0].ID}))

	remaining, err := store.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "townville.gov", remaining[0].Subject)
}
