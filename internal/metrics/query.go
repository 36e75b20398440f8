package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	queryResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sportdex",
			Subsystem: "query",
			Name:      "results",
			Help:      "Number of items returned by a search or suggestion",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"operation"},
	)

	townFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sportdex",
			Subsystem: "query",
			Name:      "town_fallbacks_total",
			Help:      "Town lookups that fell back to the default origin",
		},
	)
)

// ObserveResults records the result size of a query operation.
func ObserveResults(operation string, n int) {
	queryResults.WithLabelValues(operation).Observe(float64(n))
}

// TownFallback counts a town lookup resolved to the default origin.
func TownFallback() {
	townFallbacks.Inc()
}
