package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts cache hits by keyspace (e.g. "feed").
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_cache_hits_total",
		Help: "Total number of cache hits by keyspace",
	}, []string{"keyspace"})

	// CacheMisses counts cache misses by keyspace.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_cache_misses_total",
		Help: "Total number of cache misses by keyspace",
	}, []string{"keyspace"})

	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ripple_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
