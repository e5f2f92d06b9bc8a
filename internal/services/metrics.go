package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records client activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	TokenFetches    *prometheus.CounterVec
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	TitleLookups    *prometheus.CounterVec
}

// NewMetrics creates the client collectors and registers them with reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spotsearch_requests_total",
				Help: "Total number of catalog API requests",
			},
			[]string{"endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spotsearch_request_duration_seconds",
				Help:    "Time spent waiting for catalog API responses",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		TokenFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spotsearch_token_fetches_total",
				Help: "Total number of access token exchanges",
			},
			[]string{"status"},
		),
		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "spotsearch_cache_hits_total",
				Help: "Responses served from the in-memory cache",
			},
		),
		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "spotsearch_cache_misses_total",
				Help: "Cacheable requests that went upstream",
			},
		),
		TitleLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spotsearch_title_lookups_total",
				Help: "Track page title resolutions by outcome",
			},
			[]string{"status"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.RequestsTotal,
			m.RequestDuration,
			m.TokenFetches,
			m.CacheHits,
			m.CacheMisses,
			m.TitleLookups,
		)
	}
	return m
}

func (m *Metrics) observeRequest(endpoint, status string, took time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(took.Seconds())
}

func (m *Metrics) observeToken(err error) {
	if m == nil {
		return
	}
	m.TokenFetches.WithLabelValues(statusLabel(err)).Inc()
}

func (m *Metrics) observeCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}

func (m *Metrics) observeTitle(resolved bool) {
	if m == nil {
		return
	}
	if resolved {
		m.TitleLookups.WithLabelValues("resolved").Inc()
	} else {
		m.TitleLookups.WithLabelValues("fallback").Inc()
	}
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
