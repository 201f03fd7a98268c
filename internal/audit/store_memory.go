package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory outbox for unit tests.
type MemoryStore struct {
	mu        sync.RWMutex
	events    []Event
	pending   []PendingEvent
	published map[uuid.UUID]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{published: make(map[uuid.UUID]bool)}
}

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(map[string]any{
		"id":         event.ID.String(),
		"action":     string(event.Action),
		"subject":    event.Subject,
		"from_state": event.FromState,
		"to_state":   event.ToState,
		"detail":     event.Detail,
		"timestamp":  event.Timestamp.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	s.events = append(s.events, event)
	s.pending = append(s.pending, PendingEvent{ID: event.ID, Subject: event.Subject, Payload: raw})
	return nil
}

func (s *MemoryStore) ListPending(_ context.Context, limit int) ([]PendingEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []PendingEvent
	for _, p := range s.pending {
		if s.published[p.ID] {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) MarkPublished(_ context.Context, eventIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, eventID := range eventIDs {
		s.published[eventID] = true
	}
	return nil
}

// Events returns every appended event, for test assertions.
func (s *MemoryStore) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
