package audit

import (
	"context"

	"github.com/google/uuid"
)

// PendingEvent is one unpublished outbox row. Payload is the JSON body
// written at append time, published to Kafka verbatim.
type PendingEvent struct {
	ID      uuid.UUID
	Subject string
	Payload []byte
}

// Store is the outbox. Append runs in the caller's transaction; the pending
// and mark calls are used by the publishing worker only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListPending(ctx context.Context, limit int) ([]PendingEvent, error)
	MarkPublished(ctx context.Context, eventIDs []uuid.UUID) error
}
