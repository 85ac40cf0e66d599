// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "babble_generations_total",
		Help: "Generated sentences by mode and strategy",
	}, []string{"mode", "strategy"})

	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "babble_generation_duration_seconds",
		Help:    "Generation latency in seconds, chain lookup included",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	}, []string{"mode"})

	chainBuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "babble_chain_builds_total",
		Help: "Chains built from the corpus",
	})

	chainCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "babble_chain_cache_requests_total",
		Help: "Chain cache lookups by result",
	}, []string{"result"})

	messagesLearned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "babble_messages_learned_total",
		Help: "Incoming messages by learn outcome",
	}, []string{"outcome"})
)

func ObserveGeneration(mode, strategy string, elapsed time.Duration) {
	generationsTotal.WithLabelValues(mode, strategy).Inc()
	generationDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

func ObserveChainBuild() {
	chainBuildsTotal.Inc()
}

func ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	chainCacheRequests.WithLabelValues(result).Inc()
}

func ObserveLearn(outcome string) {
	messagesLearned.WithLabelValues(outcome).Inc()
}
