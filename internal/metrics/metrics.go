package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/techno-flashi/techno-flashi-sub000/internal/cache"
)

const namespace = "adengine"

// Metrics holds the Prometheus collectors for ad selection and tracking.
type Metrics struct {
	registry   prometheus.Gatherer
	registerer prometheus.Registerer

	AdsSelected       *prometheus.CounterVec
	SelectionDuration *prometheus.HistogramVec
	SelectionErrors   *prometheus.CounterVec
	CacheRequests     *prometheus.CounterVec
	EventsRecorded    *prometheus.CounterVec
	EventsDropped     *prometheus.CounterVec
	RecorderQueue     prometheus.Gauge
	RequestsProcessed *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)
	m.registry = reg
	return m
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		registerer: reg,
		AdsSelected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ads_selected_total",
			Help:      "Total number of ads returned by the selector",
		}, []string{"position"}),
		SelectionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "selection_duration_seconds",
			Help:      "Time to resolve the ads for a position",
			Buckets:   prometheus.DefBuckets,
		}, []string{"position"}),
		SelectionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selection_errors_total",
			Help:      "Store failures while selecting ads",
		}, []string{"position"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Position list lookups by cache tier and result",
		}, []string{"tier", "result"}),
		EventsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_recorded_total",
			Help:      "Performance events written to the store",
		}, []string{"event_type"}),
		EventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Performance events dropped before reaching the store",
		}, []string{"reason"}),
		RecorderQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "recorder_queue_length",
			Help:      "Events waiting to be written",
		}),
		RequestsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.AdsSelected,
		m.SelectionDuration,
		m.SelectionErrors,
		m.CacheRequests,
		m.EventsRecorded,
		m.EventsDropped,
		m.RecorderQueue,
		m.RequestsProcessed,
		m.RequestDuration,
	)

	return m
}

// Gatherer returns the registry to expose over /metrics.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m.registry != nil {
		return m.registry
	}
	return prometheus.DefaultGatherer
}

// ObserveCache exports the stats of a process cache under the given tier
// label. stats is read on every scrape.
func (m *Metrics) ObserveCache(tier string, stats func() cache.Stats) error {
	return m.registerer.Register(newCacheCollector(tier, stats))
}

type cacheCollector struct {
	stats     func() cache.Stats
	entries   *prometheus.Desc
	hits      *prometheus.Desc
	misses    *prometheus.Desc
	evictions *prometheus.Desc
	hitRatio  *prometheus.Desc
}

func newCacheCollector(tier string, stats func() cache.Stats) *cacheCollector {
	labels := prometheus.Labels{"tier": tier}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "cache", name), help, nil, labels)
	}

	return &cacheCollector{
		stats:     stats,
		entries:   desc("entries", "Entries held, including expired ones not yet swept"),
		hits:      desc("hits_total", "Cache lookups that found a live entry"),
		misses:    desc("misses_total", "Cache lookups that found nothing or an expired entry"),
		evictions: desc("evictions_total", "Entries removed after expiring"),
		hitRatio:  desc("hit_ratio", "Hits as a fraction of all lookups"),
	}
}

func (c *cacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
	ch <- c.hitRatio
}

func (c *cacheCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Size))
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(c.hitRatio, prometheus.GaugeValue, s.HitRate()/100)
}
