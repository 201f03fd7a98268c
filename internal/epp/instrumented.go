package epp

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Metrics holds the Prometheus metrics for registry traffic.
type Metrics struct {
	Commands *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
}

// NewMetrics creates and registers registry traffic metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Commands: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_epp_commands_total",
			Help: "EPP commands sent to the registry, by command and result code.",
		}, []string{"command", "code"}),
		Latency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registrar_epp_command_duration_seconds",
			Help:    "Round-trip latency of EPP commands.",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
	}
}

// InstrumentedClient decorates a Client with Prometheus counters and an otel
// span per command. It adds no behavior to the wire protocol.
type InstrumentedClient struct {
	next    Client
	metrics *Metrics
	tracer  trace.Tracer
}

func NewInstrumentedClient(next Client, metrics *Metrics) *InstrumentedClient {
	return &InstrumentedClient{
		next:    next,
		metrics: metrics,
		tracer:  otel.Tracer("registrar/epp"),
	}
}

func (c *InstrumentedClient) Send(ctx context.Context, cmd Command, cleaned bool) (*Response, error) {
	name := Name(cmd)
	ctx, span := c.tracer.Start(ctx, "epp.send",
		trace.WithAttributes(attribute.String("epp.command", name)))
	defer span.End()

	start := time.Now()
	resp, err := c.next.Send(ctx, cmd, cleaned)
	c.observe(name, resp, err, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var regErr *RegistryError
		if errors.As(err, &regErr) {
			span.SetAttributes(attribute.Int("epp.result_code", int(regErr.Code)))
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int("epp.result_code", int(resp.Code)))
	return resp, nil
}

func (c *InstrumentedClient) Close() error {
	return c.next.Close()
}

func (c *InstrumentedClient) observe(name string, resp *Response, err error, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	code := "transport_error"
	switch {
	case err == nil && resp != nil:
		code = strconv.Itoa(int(resp.Code))
	case err != nil:
		var regErr *RegistryError
		if errors.As(err, &regErr) {
			code = strconv.Itoa(int(regErr.Code))
		}
	}
	c.metrics.Commands.WithLabelValues(name, code).Inc()
	c.metrics.Latency.WithLabelValues(name).Observe(elapsed.Seconds())
}
