// Package metrics exposes Prometheus metrics for the assistant.
//
// Metrics are registered on a private registry so that several instances
// (tests, embedded servers) never collide on the global one. All record
// methods are safe to call on a nil *Metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
	OutcomeTimeout  = "timeout"
)

// Metrics holds the application's collectors.
type Metrics struct {
	registry *prometheus.Registry

	Turns          *prometheus.CounterVec
	TurnLatency    prometheus.Histogram
	OracleCalls    *prometheus.CounterVec
	NodeDuration   *prometheus.HistogramVec
	SessionsReaped prometheus.Counter
}

// New creates Metrics on a fresh registry. namespace prefixes every metric
// name; an empty namespace defaults to "talentsearch".
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "talentsearch"
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_turns_total",
			Help:      "Total number of chat turns by outcome",
		}, []string{"outcome"}),

		// up to two minutes for a slow completion service
		TurnLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chat_turn_duration_seconds",
			Help:      "Chat turn latency in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),

		OracleCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_calls_total",
			Help:      "Total number of completion calls by stage and outcome",
		}, []string{"stage", "outcome"}),

		NodeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_node_duration_seconds",
			Help:      "Pipeline node execution time in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"node"}),

		SessionsReaped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_reaped_total",
			Help:      "Total number of inactive sessions removed",
		}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// TrackActiveTurns registers a gauge reporting fn, typically the number of
// sessions currently holding a turn lock.
func (m *Metrics) TrackActiveTurns(fn func() int) {
	if m == nil || fn == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "talentsearch_active_turns",
		Help: "Number of sessions with a turn in progress",
	}, func() float64 { return float64(fn()) }))
}

// Outcome maps err to an outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	default:
		return OutcomeError
	}
}

// RecordTurn records a finished chat turn.
func (m *Metrics) RecordTurn(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.Turns.WithLabelValues(Outcome(err)).Inc()
	m.TurnLatency.Observe(d.Seconds())
}

// RecordOracleCall records one completion call made by stage.
func (m *Metrics) RecordOracleCall(stage string, err error) {
	if m == nil {
		return
	}
	m.OracleCalls.WithLabelValues(stage, Outcome(err)).Inc()
}

// ObserveNode records the execution time of a pipeline node.
func (m *Metrics) ObserveNode(node string, d time.Duration) {
	if m == nil {
		return
	}
	m.NodeDuration.WithLabelValues(node).Observe(d.Seconds())
}

// RecordReaped records removed sessions.
func (m *Metrics) RecordReaped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SessionsReaped.Add(float64(n))
}
