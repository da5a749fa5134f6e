package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
)

var (
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staff_auth_login_attempts_total",
			Help: "Login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	SessionWriteFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "staff_auth_session_write_failures_total",
			Help: "Successful logins whose session could not be written to the cache.",
		},
	)

	CachePoolLeasesInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "staff_auth_cache_pool_leases_in_use",
			Help: "Cache connections currently leased from the pool.",
		},
	)

	CachePoolAcquireSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "staff_auth_cache_pool_acquire_seconds",
			Help:    "Time spent waiting to lease a cache connection.",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
	)

	CachePoolExhaustedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "staff_auth_cache_pool_exhausted_total",
			Help: "Lease attempts that timed out because every connection was in use.",
		},
	)

	CachePoolConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "staff_auth_cache_pool_connections",
			Help: "Underlying cache client connections by state.",
		},
		[]string{"state"},
	)
)

// RecordLoginAttempt counts one finished login attempt.
func RecordLoginAttempt(outcome domain.LoginOutcome) {
	LoginAttemptsTotal.WithLabelValues(string(outcome)).Inc()
}

// IncrementSessionWriteFailures counts a login whose session write was abandoned.
func IncrementSessionWriteFailures() {
	SessionWriteFailuresTotal.Inc()
}

// LeaseAcquired records a successful lease and the time spent waiting for it.
func LeaseAcquired(wait time.Duration) {
	CachePoolAcquireSeconds.Observe(wait.Seconds())
	CachePoolLeasesInUse.Inc()
}

// LeaseReleased records a lease returned to the pool.
func LeaseReleased() {
	CachePoolLeasesInUse.Dec()
}

// IncrementPoolExhausted counts a lease attempt that timed out.
func IncrementPoolExhausted() {
	CachePoolExhaustedTotal.Inc()
}

// ObservePoolStats exports the go-redis pool counters.
func ObservePoolStats(stats *redis.PoolStats) {
	if stats == nil {
		return
	}
	CachePoolConnections.WithLabelValues("total").Set(float64(stats.TotalConns))
	CachePoolConnections.WithLabelValues("idle").Set(float64(stats.IdleConns))
	CachePoolConnections.WithLabelValues("stale").Set(float64(stats.StaleConns))
}
