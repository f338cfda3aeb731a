// Package metrics exposes Prometheus instruments for tree mutations,
// aggregation and persistence.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Mutation outcomes.
const (
	OutcomeApplied = "applied"
	OutcomeIgnored = "ignored"
)

// Registry holds all metrics for the application
type Registry struct {
	MutationsTotal    *prometheus.CounterVec
	TreeNodes         prometheus.Gauge
	RecomputeDuration prometheus.Histogram
	PersistenceTotal  *prometheus.CounterVec
	PersistenceBytes  *prometheus.HistogramVec
	SessionsActive    prometheus.Gauge
	CommandsTotal     *prometheus.CounterVec
	registry          *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{registry: reg}
	factory := promauto.With(reg)

	r.MutationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "powertree_mutations_total",
			Help: "Tree mutations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	r.TreeNodes = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "powertree_tree_nodes",
			Help: "Number of nodes in the most recently changed tree",
		},
	)

	r.RecomputeDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "powertree_recompute_duration_seconds",
			Help:    "Full-tree power aggregation duration in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		},
	)

	r.PersistenceTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "powertree_persistence_operations_total",
			Help: "Export, import and quick-cache operations by status",
		},
		[]string{"operation", "status"},
	)

	r.PersistenceBytes = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "powertree_persistence_payload_bytes",
			Help:    "Size of serialized trees in bytes",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		},
		[]string{"operation"},
	)

	r.SessionsActive = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "powertree_sessions_active",
			Help: "Number of open editing sessions",
		},
	)

	r.CommandsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "powertree_commands_total",
			Help: "Commands executed by scope and status",
		},
		[]string{"scope", "status"},
	)

	return r
}

// RecordMutation counts a mutation request and whether it changed the tree.
func (r *Registry) RecordMutation(operation string, applied bool) {
	outcome := OutcomeIgnored
	if applied {
		outcome = OutcomeApplied
	}
	r.MutationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordRecompute records one aggregation pass over a tree of size nodes.
func (r *Registry) RecordRecompute(nodes int, duration time.Duration) {
	r.TreeNodes.Set(float64(nodes))
	r.RecomputeDuration.Observe(duration.Seconds())
}

// RecordPersistence records a persistence operation and its payload size.
func (r *Registry) RecordPersistence(operation, status string, size int) {
	r.PersistenceTotal.WithLabelValues(operation, status).Inc()
	if size > 0 {
		r.PersistenceBytes.WithLabelValues(operation).Observe(float64(size))
	}
}

// RecordCommand counts an executed command.
func (r *Registry) RecordCommand(scope string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.CommandsTotal.WithLabelValues(scope, status).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
