// Package metrics exposes Prometheus instrumentation for the core. All
// methods are nil-safe so callers can run without a registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	completions          *prometheus.CounterVec
	achievementsUnlocked prometheus.Counter

	tierFailovers *prometheus.CounterVec
	tierReplays   *prometheus.CounterVec
	tierRecovered *prometheus.CounterVec

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "task_completions_total",
				Help: "Total number of task completion attempts",
			},
			[]string{"status"},
		),
		achievementsUnlocked: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "achievements_unlocked_total",
				Help: "Total number of achievements unlocked",
			},
		),
		tierFailovers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_tier_failovers_total",
				Help: "Times a storage tier was marked unavailable",
			},
			[]string{"tier"},
		),
		tierReplays: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_tier_replays_total",
				Help: "Write replays applied to recovered tiers",
			},
			[]string{"tier"},
		),
		tierRecovered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_tier_recoveries_total",
				Help: "Times a storage tier was promoted back from unavailable",
			},
			[]string{"tier"},
		),
		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Cache hits by tier",
			},
			[]string{"tier"},
		),
		cacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Cache misses by tier",
			},
			[]string{"tier"},
		),
	}

	m.registry.MustRegister(
		m.completions,
		m.achievementsUnlocked,
		m.tierFailovers,
		m.tierReplays,
		m.tierRecovered,
		m.cacheHits,
		m.cacheMisses,
	)
	return m
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Completion(status string) {
	if m == nil {
		return
	}
	m.completions.WithLabelValues(status).Inc()
}

func (m *Metrics) AchievementsUnlocked(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.achievementsUnlocked.Add(float64(n))
}

func (m *Metrics) TierFailover(tier string) {
	if m == nil {
		return
	}
	m.tierFailovers.WithLabelValues(tier).Inc()
}

func (m *Metrics) TierReplay(tier string) {
	if m == nil {
		return
	}
	m.tierReplays.WithLabelValues(tier).Inc()
}

func (m *Metrics) TierRecovered(tier string) {
	if m == nil {
		return
	}
	m.tierRecovered.WithLabelValues(tier).Inc()
}

func (m *Metrics) CacheHit(tier string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(tier).Inc()
}

func (m *Metrics) CacheMiss(tier string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(tier).Inc()
}
