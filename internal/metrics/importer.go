package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Row outcomes of an import pass.
const (
	OutcomeWritten   = "written"
	OutcomeSkipped   = "skipped"
	OutcomeUnmatched = "unmatched"
)

// Import holds the batch import metrics. A nil *Import records nothing.
type Import struct {
	rows         *prometheus.CounterVec
	skipped      *prometheus.CounterVec
	bulkFailures *prometheus.CounterVec
	passDuration *prometheus.HistogramVec
	lastSuccess  *prometheus.GaugeVec
}

// NewImport creates the import metrics and registers them on reg. Collectors
// already registered on reg are reused.
func NewImport(reg prometheus.Registerer) *Import {
	m := &Import{
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sportdex",
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Rows handled by an import pass, by outcome",
		}, []string{"pass", "outcome"}),

		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sportdex",
			Subsystem: "import",
			Name:      "rows_skipped_total",
			Help:      "Rows skipped as malformed, by reason",
		}, []string{"pass", "reason"}),

		bulkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sportdex",
			Subsystem: "import",
			Name:      "bulk_failures_total",
			Help:      "Items rejected by a bulk write",
		}, []string{"target"}),

		passDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sportdex",
			Subsystem: "import",
			Name:      "pass_duration_seconds",
			Help:      "Wall time of one import pass",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"pass"}),

		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "sportdex",
			Subsystem: "import",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last pass that finished without a fatal error",
		}, []string{"pass"}),
	}

	register(reg, &m.rows)
	register(reg, &m.skipped)
	register(reg, &m.bulkFailures)
	register(reg, &m.passDuration)
	register(reg, &m.lastSuccess)
	return m
}

// Row counts one row of pass with the given outcome.
func (m *Import) Row(pass, outcome string) {
	if m == nil {
		return
	}
	m.rows.WithLabelValues(pass, outcome).Inc()
}

// Skip counts one malformed row of pass.
func (m *Import) Skip(pass, reason string) {
	if m == nil {
		return
	}
	m.rows.WithLabelValues(pass, OutcomeSkipped).Inc()
	m.skipped.WithLabelValues(pass, reason).Inc()
}

// BulkFailures adds n rejected items of a bulk write into target.
func (m *Import) BulkFailures(target string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bulkFailures.WithLabelValues(target).Add(float64(n))
}

// PassDone records the duration of a finished pass and, when ok, its completion time.
func (m *Import) PassDone(pass string, d time.Duration, ok bool) {
	if m == nil {
		return
	}
	m.passDuration.WithLabelValues(pass).Observe(d.Seconds())
	if ok {
		m.lastSuccess.WithLabelValues(pass).SetToCurrentTime()
	}
}

func register[T prometheus.Collector](reg prometheus.Registerer, c *T) {
	err := reg.Register(*c)
	if err == nil {
		return
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			*c = existing
			return
		}
	}
	panic(err)
}
