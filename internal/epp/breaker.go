package epp

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"registrar/pkg/platform/circuit"
	"registrar/pkg/platform/sentinel"
)

// BreakerClient fails fast when the registry connection is down instead of
// letting every HTTP worker block on a dead socket. A registry-side rejection
// is a healthy round trip and never trips the breaker; only transport
// failures count. While open, one probe per cooldown window is let through to
// detect recovery.
type BreakerClient struct {
	next    Client
	breaker *circuit.Breaker
	logger  *slog.Logger

	mu        sync.Mutex
	cooldown  time.Duration
	lastProbe time.Time
}

func NewBreakerClient(next Client, logger *slog.Logger) *BreakerClient {
	return &BreakerClient{
		next:     next,
		breaker:  circuit.New("epp", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
		logger:   logger,
		cooldown: 30 * time.Second,
	}
}

func (c *BreakerClient) Send(ctx context.Context, cmd Command, cleaned bool) (*Response, error) {
	if c.breaker.IsOpen() && !c.allowProbe() {
		return nil, sentinel.ErrUnavailable
	}

	resp, err := c.next.Send(ctx, cmd, cleaned)

	var regErr *RegistryError
	if err == nil || errors.As(err, &regErr) {
		if _, change := c.breaker.RecordSuccess(); change.Closed {
			c.logger.InfoContext(ctx, "registry connection recovered", "breaker", c.breaker.Name())
		}
		return resp, err
	}

	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.ErrorContext(ctx, "registry connection failing, circuit opened",
			"breaker", c.breaker.Name(), "error", err)
	}
	return resp, err
}

func (c *BreakerClient) allowProbe() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(c.lastProbe) < c.cooldown {
		return false
	}
	c.lastProbe = time.Now()
	return true
}

func (c *BreakerClient) Close() error {
	return c.next.Close()
}
