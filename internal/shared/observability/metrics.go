package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ResolutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "typeinspector_resolution_seconds",
		Help:    "Time spent resolving the type under the caret.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "typeinspector_resolutions_total",
		Help: "Total number of resolutions by outcome.",
	}, []string{"outcome"})

	BackendFaultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typeinspector_backend_faults_total",
		Help: "Total number of analysis backend errors or panics folded into a status string.",
	})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typeinspector_cache_hits_total",
		Help: "Total number of result cache hits.",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typeinspector_cache_misses_total",
		Help: "Total number of result cache misses.",
	})

	CacheInvalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typeinspector_cache_invalidations_total",
		Help: "Total number of cache entries dropped because their buffer changed.",
	})

	CacheEvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typeinspector_cache_evictions_total",
		Help: "Total number of results evicted by the cache capacity bound.",
	})

	CacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "typeinspector_cache_entries",
		Help: "Current number of cached results across sessions.",
	})

	CaretEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typeinspector_caret_events_total",
		Help: "Total number of caret events received by installed widgets.",
	})

	PublishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "typeinspector_publish_total",
		Help: "Total number of completed resolutions by publish decision.",
	}, []string{"decision"})

	InFlightResolutions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "typeinspector_inflight_resolutions",
		Help: "Current number of triggered resolutions not yet published.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typeinspector_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "typeinspector_parsing_seconds",
		Help:    "Time spent parsing a buffer.",
		Buckets: prometheus.DefBuckets,
	})
)
