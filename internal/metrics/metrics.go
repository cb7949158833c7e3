// Package metrics exposes Prometheus instruments for the what-if service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "whatif"

// Metrics groups every instrument the service records. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry           *prometheus.Registry
	evaluations        *prometheus.CounterVec
	simulations        *prometheus.CounterVec
	simulationDuration prometheus.Histogram
	droppedStockouts   prometheus.Counter
	activeSessions     prometheus.Gauge
}

// New registers all instruments on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Analytical safety stock evaluations by result.",
		}, []string{"result"}),
		simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Simulator calls by final status.",
		}, []string{"status"}),
		simulationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_duration_seconds",
			Help:      "Round-trip time of simulator calls.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		droppedStockouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_stockouts_total",
			Help:      "Malformed stockout entries dropped during reconciliation.",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Scenario sessions currently held in memory.",
		}),
	}

	m.registry.MustRegister(
		m.evaluations,
		m.simulations,
		m.simulationDuration,
		m.droppedStockouts,
		m.activeSessions,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) ObserveEvaluation(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "domain_error"
	}
	m.evaluations.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveSimulation(status string, elapsed time.Duration, dropped int) {
	if m == nil {
		return
	}
	m.simulations.WithLabelValues(status).Inc()
	m.simulationDuration.Observe(elapsed.Seconds())
	if dropped > 0 {
		m.droppedStockouts.Add(float64(dropped))
	}
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
