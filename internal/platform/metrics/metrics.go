package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application-level Prometheus metrics. Registry traffic
// metrics live with the EPP client.
type Metrics struct {
	Transitions  *prometheus.CounterVec
	EmailsSent   prometheus.Counter
	EmailsFailed prometheus.Counter
}

// New creates and registers all application metrics.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_request_transitions_total",
			Help: "Domain request workflow transitions, by event and outcome.",
		}, []string{"event", "outcome"}),
		EmailsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "registrar_emails_sent_total",
			Help: "Notification emails handed to the mail transport.",
		}),
		EmailsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "registrar_emails_failed_total",
			Help: "Notification emails refused or failed in transport.",
		}),
	}
}

// RecordTransition counts one workflow transition attempt.
func (m *Metrics) RecordTransition(event string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Transitions.WithLabelValues(event, outcome).Inc()
}
