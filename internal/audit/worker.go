package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultBatchSize    = 100
)

// Worker drains the outbox into Kafka. Events are keyed by subject so all
// records for one request or domain land on the same partition in order.
type Worker struct {
	store    Store
	client   *kgo.Client
	topic    string
	interval time.Duration
	logger   *slog.Logger
}

func NewWorker(store Store, client *kgo.Client, topic string, logger *slog.Logger) *Worker {
	return &Worker{
		store:    store,
		client:   client,
		topic:    topic,
		interval: defaultPollInterval,
		logger:   logger,
	}
}

// EnsureTopic creates the audit topic if it does not exist.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(ctx, 3, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create audit topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create audit topic %s: %w", topic, resp.Err)
	}
	return nil
}

// Run polls the outbox until the context ends.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drain(ctx); err != nil {
				w.logger.ErrorContext(ctx, "audit outbox drain failed", "error", err)
			}
		}
	}
}

func (w *Worker) drain(ctx context.Context) error {
	for {
		pending, err := w.store.ListPending(ctx, defaultBatchSize)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}

		records := make([]*kgo.Record, 0, len(pending))
		for _, p := range pending {
			records = append(records, &kgo.Record{
				Topic: w.topic,
				Key:   []byte(p.Subject),
				Value: p.Payload,
			})
		}
		if err := w.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
			return fmt.Errorf("produce audit events: %w", err)
		}

		ids := make([]uuid.UUID, 0, len(pending))
		for _, p := range pending {
			ids = append(ids, p.ID)
		}
		if err := w.store.MarkPublished(ctx, ids); err != nil {
			return err
		}
		if len(pending) < defaultBatchSize {
			return nil
		}
	}
}
