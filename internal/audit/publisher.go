package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"registrar/pkg/requestcontext"
)

// Publisher captures audit events. Emit must be called inside the same
// transaction as the change it records so the event and the change commit or
// roll back together.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// StorePublisher writes events to a Store, stamping actor and client metadata
// from the request context.
type StorePublisher struct {
	store Store
}

func NewPublisher(store Store) *StorePublisher {
	return &StorePublisher{store: store}
}

func (p *StorePublisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ActorID.IsNil() {
		event.ActorID = requestcontext.UserID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}
	return p.store.Append(ctx, event)
}
