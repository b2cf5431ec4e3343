package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheReads counts query cache reads by entity and outcome
	// (hit, stale, miss).
	CacheReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sellerhood_cache_reads_total",
		Help: "Total query cache reads by entity and outcome",
	}, []string{"entity", "outcome"})

	// CacheBackgroundRefreshes counts stale entries refreshed in the
	// background.
	CacheBackgroundRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sellerhood_cache_background_refreshes_total",
		Help: "Total background refreshes of stale cache entries",
	}, []string{"entity"})

	// CacheInvalidations counts explicit invalidations by entity.
	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sellerhood_cache_invalidations_total",
		Help: "Total cache invalidations by entity",
	}, []string{"entity"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sellerhood_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sellerhood_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AuthSessionEvents counts auth session events by kind.
	AuthSessionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sellerhood_auth_session_events_total",
		Help: "Total auth session events observed by kind",
	}, []string{"kind"})
)

// TrackQuery returns a function that records query latency when called
// (typically deferred).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
