package observability

import (
	"context"

	"github.com/aretw0/rewatch/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of a rewatch process.
type Metrics struct {
	Events          *prometheus.CounterVec
	Rebuilds        *prometheus.CounterVec
	Commands        *prometheus.CounterVec
	CommandDuration prometheus.Histogram
	InFlight        prometheus.Gauge

	mode string
}

// NewMetrics creates the collectors and registers them on reg.
// mode labels rebuilds ("sync" or "async").
func NewMetrics(reg prometheus.Registerer, mode string) *Metrics {
	m := &Metrics{
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewatch_events_total",
				Help: "Change events received, by kind",
			},
			[]string{"kind"},
		),
		Rebuilds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewatch_rebuilds_total",
				Help: "Chains executed, by dispatch mode",
			},
			[]string{"mode"},
		),
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewatch_commands_total",
				Help: "Commands run, by outcome",
			},
			[]string{"outcome"},
		),
		CommandDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rewatch_command_duration_seconds",
				Help:    "Wall time of each command",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
		),
		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "rewatch_rebuilds_in_flight",
				Help: "Chains currently running",
			},
		),
		mode: mode,
	}
	reg.MustRegister(m.Events, m.Rebuilds, m.Commands, m.CommandDuration, m.InFlight)
	return m
}

// ObserveEvent counts an event received by the watch loop.
func (m *Metrics) ObserveEvent(evt domain.Event) {
	m.Events.WithLabelValues(string(evt.Kind)).Inc()
}

// ObserveInFlight adjusts the running chains gauge.
func (m *Metrics) ObserveInFlight(delta float64) {
	m.InFlight.Add(delta)
}

// Hooks returns executor hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommandExit: func(_ context.Context, e *domain.CommandEvent) {
			m.Commands.WithLabelValues(string(e.Outcome.Outcome)).Inc()
			m.CommandDuration.Observe(e.Outcome.Duration.Seconds())
		},
		OnChainDone: func(_ context.Context, _ *domain.ChainEvent) {
			m.Rebuilds.WithLabelValues(m.mode).Inc()
		},
	}
}
