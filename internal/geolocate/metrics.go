package geolocate

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the location resolver.
type Metrics struct {
	ExtractionsTotal   *prometheus.CounterVec
	ExtractionDuration prometheus.Histogram
	CacheHitsTotal     prometheus.Counter
	NERCallsTotal      *prometheus.CounterVec
	NERDuration        prometheus.Histogram
}

// NewMetrics registers and returns resolver metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ExtractionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_location_extractions_total",
			Help: "Total location extractions by resolution method.",
		}, []string{"method"}),
		ExtractionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "beacon_location_extraction_duration_seconds",
			Help:    "Duration of uncached location extractions in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8), // 1ms .. ~16s
		}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beacon_location_cache_hits_total",
			Help: "Total location extractions served from cache.",
		}),
		NERCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_ner_calls_total",
			Help: "Total NER upstream calls by status.",
		}, []string{"status"}),
		NERDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "beacon_ner_call_duration_seconds",
			Help:    "Duration of individual NER upstream calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 9), // 50ms .. ~12.8s
		}),
	}

	reg.MustRegister(
		m.ExtractionsTotal,
		m.ExtractionDuration,
		m.CacheHitsTotal,
		m.NERCallsTotal,
		m.NERDuration,
	)

	return m
}

// Hooks returns a Hooks that increments the corresponding metrics.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnCacheHit: func() {
			m.CacheHitsTotal.Inc()
		},
		OnResult: func(method Method, duration float64) {
			m.ExtractionsTotal.WithLabelValues(string(method)).Inc()
			m.ExtractionDuration.Observe(duration)
		},
		OnNERCall: func(duration float64, failed bool) {
			status := "success"
			if failed {
				status = "error"
			}
			m.NERCallsTotal.WithLabelValues(status).Inc()
			m.NERDuration.Observe(duration)
		},
	}
}
