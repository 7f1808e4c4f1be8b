package metrics

import "github.com/prometheus/client_golang/prometheus"

// AvailabilityMetrics exposes counters/histograms for availability queries.
type AvailabilityMetrics struct {
	queryTotal      *prometheus.CounterVec
	queryLatency    *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	failClosedTotal prometheus.Counter
}

func NewAvailabilityMetrics(reg prometheus.Registerer) *AvailabilityMetrics {
	m := &AvailabilityMetrics{
		queryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "veracare",
			Subsystem: "availability",
			Name:      "query_total",
			Help:      "Total availability queries by operation and outcome",
		}, []string{"op", "status"}),
		queryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "veracare",
			Subsystem: "availability",
			Name:      "query_latency_seconds",
			Help:      "Latency of availability queries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "veracare",
			Subsystem: "availability",
			Name:      "slot_cache_hits_total",
			Help:      "Read-path slot cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "veracare",
			Subsystem: "availability",
			Name:      "slot_cache_misses_total",
			Help:      "Read-path slot cache misses (including expiries)",
		}),
		failClosedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "veracare",
			Subsystem: "availability",
			Name:      "slot_check_fail_closed_total",
			Help:      "Write-path slot checks answered 'not available' because a store query failed. Sustained growth means the store is down and all new bookings are being refused; alert on it.",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.queryTotal, m.queryLatency, m.cacheHits, m.cacheMisses, m.failClosedTotal)
	return m
}

func (m *AvailabilityMetrics) ObserveQuery(op, status string, seconds float64) {
	if m == nil {
		return
	}
	m.queryTotal.WithLabelValues(op, status).Inc()
	m.queryLatency.WithLabelValues(op).Observe(seconds)
}

func (m *AvailabilityMetrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
		return
	}
	m.cacheMisses.Inc()
}

func (m *AvailabilityMetrics) ObserveFailClosed() {
	if m == nil {
		return
	}
	m.failClosedTotal.Inc()
}
