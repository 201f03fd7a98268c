package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	txcontext "registrar/pkg/platform/tx"
)

// PostgresStore implements the transactional outbox. Events land in the
// outbox table with the caller's transaction; the worker reads unpublished
// rows and stamps published_at after the Kafka write succeeds.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) runner(ctx context.Context) dbRunner {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// payload is the JSON body published to Kafka. Field names are the consumer
// contract; change them only with a topic version bump.
type payload struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	ActorID   string `json:"actor_id,omitempty"`
	Subject   string `json:"subject"`
	FromState string `json:"from_state,omitempty"`
	ToState   string `json:"to_state,omitempty"`
	Detail    string `json:"detail,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Timestamp string `json:"timestamp"`
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	body := payload{
		ID:        event.ID.String(),
		Action:    string(event.Action),
		Subject:   event.Subject,
		FromState: event.FromState,
		ToState:   event.ToState,
		Detail:    event.Detail,
		ClientIP:  event.ClientIP,
		UserAgent: event.UserAgent,
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
	}
	if !event.ActorID.IsNil() {
		body.ActorID = event.ActorID.String()
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	query := `
		INSERT INTO audit_outbox (id, action, subject, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.runner(ctx).ExecContext(ctx, query,
		event.ID, string(event.Action), event.Subject, raw, event.Timestamp)
	if err != nil {
		return fmt.Errorf("insert audit outbox entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListPending(ctx context.Context, limit int) ([]PendingEvent, error) {
	query := `
		SELECT id, subject, payload
		FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending audit events: %w", err)
	}
	defer rows.Close()

	var out []PendingEvent
	for rows.Next() {
		var pending PendingEvent
		if err := rows.Scan(&pending.ID, &pending.Subject, &pending.Payload); err != nil {
			return nil, fmt.Errorf("scan audit outbox entry: %w", err)
		}
		out = append(out, pending)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarkPublished(ctx context.Context, eventIDs []uuid.UUID) error {
	if len(eventIDs) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(eventIDs))
	copy(ids, eventIDs)
	_, err := s.db.ExecContext(ctx,
		`UPDATE audit_outbox SET published_at = NOW() WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("mark audit events published: %w", err)
	}
	return nil
}
