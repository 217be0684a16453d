package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search Prometheus metrics.
var (
	IndexSearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "labsearch",
			Name:      "index_search_duration_seconds",
			Help:      "Single-index search duration in seconds, including sort fallbacks",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"index"},
	)

	IndexSearchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "labsearch",
			Name:      "index_search_total",
			Help:      "Single-index searches by outcome (ok or failure kind)",
		},
		[]string{"index", "outcome"},
	)

	SortFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "labsearch",
			Name:      "sort_fallback_total",
			Help:      "Sort attempts rejected by the engine, by the step that was abandoned",
		},
		[]string{"index", "step"}, // "exact" / "original"
	)

	MultiSearchPartialTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "labsearch",
			Name:      "multi_search_partial_total",
			Help:      "Multi-index searches that returned a partial failure",
		},
	)
)

var searchMetricsOnce sync.Once

// RegisterSearchMetrics registers Prometheus search metrics. Safe to call more than once.
func RegisterSearchMetrics() {
	searchMetricsOnce.Do(func() {
		prometheus.MustRegister(IndexSearchDuration)
		prometheus.MustRegister(IndexSearchTotal)
		prometheus.MustRegister(SortFallbackTotal)
		prometheus.MustRegister(MultiSearchPartialTotal)
	})
}
