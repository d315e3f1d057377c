package feed

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the feed subsystem.
type Metrics struct {
	FetchesTotal   *prometheus.CounterVec
	BatchSize      prometheus.Histogram
	AlertsPerBatch prometheus.Histogram
}

// NewMetrics registers and returns feed metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_feed_fetches_total",
			Help: "Total report batch fetches by source.",
		}, []string{"source"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "beacon_feed_batch_size",
			Help:    "Reports per fetched batch.",
			Buckets: prometheus.LinearBuckets(0, 5, 10), // 0 .. 45
		}),
		AlertsPerBatch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "beacon_feed_alerts_per_batch",
			Help:    "Priority alerts detected per batch.",
			Buckets: prometheus.LinearBuckets(0, 1, 10), // 0 .. 9
		}),
	}

	reg.MustRegister(
		m.FetchesTotal,
		m.BatchSize,
		m.AlertsPerBatch,
	)

	return m
}

// Hooks returns a Hooks that increments the corresponding metrics.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnFetch: func(cacheHit bool, count int) {
			source := "provider"
			if cacheHit {
				source = "cache"
			}
			m.FetchesTotal.WithLabelValues(source).Inc()
			m.BatchSize.Observe(float64(count))
		},
		OnAlerts: func(count int) {
			m.AlertsPerBatch.Observe(float64(count))
		},
	}
}
