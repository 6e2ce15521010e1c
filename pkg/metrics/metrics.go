// Package metrics defines the Prometheus instruments for the rewrite
// service: business counters and histograms plus database pool gauges.
package metrics

import (
	"context"
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/trace"
)

// BusinessMetrics tracks rewrite activity.
type BusinessMetrics struct {
	RewritesTotal     *prometheus.CounterVec
	RewriteDuration   *prometheus.HistogramVec
	ChangesTotal      *prometheus.CounterVec
	ConfidenceGain    prometheus.Histogram
	WordsRemovedTotal prometheus.Counter
}

// NewBusinessMetrics registers and returns the business metric set under the
// given namespace.
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	return &BusinessMetrics{
		RewritesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rewrites_total",
			Help:      "Total number of rewrite operations by status.",
		}, []string{"status"}),
		RewriteDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rewrite_duration_seconds",
			Help:      "Time spent rewriting one text.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		ChangesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "changes_total",
			Help:      "Total number of recorded edits by change type.",
		}, []string{"change_type"}),
		ConfidenceGain: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confidence_gain",
			Help:      "Confidence-after minus confidence-before per rewrite.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		WordsRemovedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "words_removed_total",
			Help:      "Total words removed across all rewrites.",
		}),
	}
}

// ObserveDurationWithExemplar records a rewrite duration, attaching the
// current trace ID as an exemplar when one is present and the underlying
// histogram supports exemplars.
func (m *BusinessMetrics) ObserveDurationWithExemplar(ctx context.Context, seconds float64, status string) {
	observer := m.RewriteDuration.WithLabelValues(status)

	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.HasTraceID() {
		if eo, ok := observer.(prometheus.ExemplarObserver); ok {
			eo.ObserveWithExemplar(seconds, prometheus.Labels{"trace_id": sc.TraceID().String()})
			return
		}
	}
	observer.Observe(seconds)
}

// DatabaseMetrics exposes connection pool statistics.
type DatabaseMetrics struct {
	OpenConnections prometheus.Gauge
	InUse           prometheus.Gauge
	Idle            prometheus.Gauge
	WaitCount       prometheus.Gauge
}

// NewDatabaseMetrics registers and returns the database gauges under the
// given namespace.
func NewDatabaseMetrics(namespace string) *DatabaseMetrics {
	return &DatabaseMetrics{
		OpenConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_open_connections",
			Help:      "Open database connections.",
		}),
		InUse: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_in_use_connections",
			Help:      "Database connections currently in use.",
		}),
		Idle: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_idle_connections",
			Help:      "Idle database connections.",
		}),
		WaitCount: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_wait_count",
			Help:      "Total connections waited for.",
		}),
	}
}

// UpdateDBStats refreshes the pool gauges from the connection's stats.
func (m *DatabaseMetrics) UpdateDBStats(conn *sql.DB) {
	stats := conn.Stats()
	m.OpenConnections.Set(float64(stats.OpenConnections))
	m.InUse.Set(float64(stats.InUse))
	m.Idle.Set(float64(stats.Idle))
	m.WaitCount.Set(float64(stats.WaitCount))
}
