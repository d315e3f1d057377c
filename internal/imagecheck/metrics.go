package imagecheck

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the image verifier.
type Metrics struct {
	VerificationsTotal *prometheus.CounterVec
	CacheHitsTotal     prometheus.Counter
	UpstreamCallsTotal *prometheus.CounterVec
	UpstreamDuration   *prometheus.HistogramVec
}

// NewMetrics registers and returns verifier metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		VerificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_image_verifications_total",
			Help: "Total image verifications by terminal status.",
		}, []string{"status"}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beacon_image_cache_hits_total",
			Help: "Total image verifications served from cache.",
		}),
		UpstreamCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_image_upstream_calls_total",
			Help: "Total upstream calls by operation and status.",
		}, []string{"op", "status"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "beacon_image_upstream_duration_seconds",
			Help:    "Duration of upstream calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
		}, []string{"op"}),
	}

	reg.MustRegister(
		m.VerificationsTotal,
		m.CacheHitsTotal,
		m.UpstreamCallsTotal,
		m.UpstreamDuration,
	)

	return m
}

// Hooks returns a Hooks that increments the corresponding metrics.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnCacheHit: func() {
			m.CacheHitsTotal.Inc()
		},
		OnResult: func(status Status) {
			m.VerificationsTotal.WithLabelValues(string(status)).Inc()
		},
		OnUpstream: func(op string, duration float64, failed bool) {
			status := "success"
			if failed {
				status = "error"
			}
			m.UpstreamCallsTotal.WithLabelValues(op, status).Inc()
			m.UpstreamDuration.WithLabelValues(op).Observe(duration)
		},
	}
}
