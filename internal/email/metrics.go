package email

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// MeteredSender counts delivery outcomes around another sender.
type MeteredSender struct {
	next   Sender
	sent   prometheus.Counter
	failed prometheus.Counter
}

func NewMeteredSender(next Sender, sent, failed prometheus.Counter) *MeteredSender {
	return &MeteredSender{next: next, sent: sent, failed: failed}
}

func (s *MeteredSender) Send(ctx context.Context, msg Message) error {
	if err := s.next.Send(ctx, msg); err != nil {
		s.failed.Inc()
		return err
	}
	s.sent.Inc()
	return nil
}
