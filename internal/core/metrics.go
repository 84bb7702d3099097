package core

import (
	"github.com/prometheus/client_golang/prometheus"
)

// outcomeOK labels successful conversions; failures use their error code.
const outcomeOK = "ok"

// Metrics holds the conversion collectors.
type Metrics struct {
	conversions *prometheus.CounterVec
	batchSize   prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is what tests usually want.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unitconv",
			Name:      "conversions_total",
			Help:      "Conversions performed, by category and outcome (ok or error code).",
		}, []string{"category", "outcome"}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "unitconv",
			Name:      "batch_size",
			Help:      "Number of conversions per batch request.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.conversions, m.batchSize} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// observe records one conversion. Categories outside the table are folded
// into "unknown" to keep label cardinality bounded.
func (m *Metrics) observe(category string, known bool, err error) {
	if m == nil {
		return
	}
	if !known {
		category = "unknown"
	}
	outcome := outcomeOK
	if err != nil {
		outcome = ErrorCode(err)
	}
	m.conversions.WithLabelValues(category, outcome).Inc()
}

func (m *Metrics) observeBatch(n int) {
	if m == nil {
		return
	}
	m.batchSize.Observe(float64(n))
}
