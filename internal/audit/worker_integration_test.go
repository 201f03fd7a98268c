//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"registrar/internal/audit"
	id "registrar/pkg/domain"
	"registrar/pkg/requestcontext"
	"registrar/pkg/testutil/containers"
)

type WorkerSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	redpanda *containers.RedpandaContainer
	store    *audit.PostgresStore
}

func TestWorkerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(WorkerSuite))
}

func (s *WorkerSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.redpanda = mgr.GetRedpanda(s.T())
	s.store = audit.NewPostgresStore(s.postgres.DB)
}

func (s *WorkerSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "audit_outbox"))
}

func (s *WorkerSuite) TestOutboxDrainsToKafka() {
	ctx := context.Background()
	topic := "registrar.audit.worker-test"

	producer := s.redpanda.NewClient(s.T())
	defer producer.Close()
	s.Require().NoError(audit.EnsureTopic(ctx, producer, topic))

	publisher := audit.NewPublisher(s.store)
	actor := requestcontext.WithUserID(ctx, id.NewUserID())
	s.Require().NoError(publisher.Emit(actor, audit.Event{
		Action:    audit.ActionRequestSubmit,
		Subject:   "igorville.gov",
		FromState: "started",
		ToState:   "submitted",
	}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	worker := audit.NewWorker(s.store, producer, topic, logger)
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- worker.Run(runCtx) }()

	consumer := s.redpanda.NewClient(s.T(),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()))
	defer consumer.Close()

	pollCtx, pollCancel := context.WithTimeout(ctx, 30*time.Second)
	defer pollCancel()
	fetches := consumer.PollFetches(pollCtx)
	s.Require().NoError(fetches.Err())
	records := fetches.Records()
	s.Require().NotEmpty(records)

	s.Equal("igorville.gov", string(records[0].Key))
	var payload map[string]any
	s.Require().NoError(json.Unmarshal(records[0].Value, &payload))
	s.Equal(string(audit.ActionRequestSubmit), payload["action"])

	cancel()
	s.ErrorIs(<-done, context.Canceled)

	// The drained row is stamped so it is not re-published.
	pending, err := s.store.ListPending(ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending)
}
