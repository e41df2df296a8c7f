package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusboard_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campusboard_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ModerationTransitions counts post state transitions by action and outcome.
	ModerationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusboard_moderation_transitions_total",
		Help: "Total number of post moderation transitions by action and outcome",
	}, []string{"action", "outcome"})

	// ConsensusAutoApprovals counts cross-school auto-approvals.
	ConsensusAutoApprovals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusboard_consensus_auto_approvals_total",
		Help: "Total number of posts auto-approved by cross-school voting",
	})

	// PublishFailures counts swallowed external publish failures by channel.
	PublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusboard_publish_failures_total",
		Help: "Total number of external publish failures by channel",
	}, []string{"channel"})

	// NotifyFailures counts swallowed notification failures.
	NotifyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusboard_notify_failures_total",
		Help: "Total number of notification dispatch failures",
	})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct{}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics() *DatabaseMetrics {
	return &DatabaseMetrics{}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

// RecordTransition increments the moderation transition counter.
func RecordTransition(action, outcome string) {
	ModerationTransitions.WithLabelValues(action, outcome).Inc()
}
