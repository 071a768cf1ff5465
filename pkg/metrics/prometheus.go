// Package metrics provides Prometheus metrics for the leaderboard service.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the leaderboard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          atomic.Bool
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Ranking
	scoreUpdates      prometheus.Counter
	scoreUpdateErrors prometheus.Counter
	leaderboardReads  prometheus.Counter
	storeLatency      *prometheus.HistogramVec
	storeErrors       *prometheus.CounterVec
	trackedGames      prometheus.Gauge

	// Popularity cache
	cacheRequests      *prometheus.CounterVec
	cacheInvalidations prometheus.Counter
	popularityMarks    prometheus.Counter

	// Export
	exportRuns        *prometheus.CounterVec
	exportDuration    prometheus.Histogram
	exportedGames     prometheus.Counter
	exportFailedGames prometheus.Counter
	dirtyGames        prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "leaderboard",
		subsystem:        "service",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	m.enabled.Store(true)

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// Enabled reports whether recorders on this manager observe anything.
func (m *Manager) Enabled() bool {
	return m.enabled.Load()
}

func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)

	m.scoreUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "score_updates_total",
		Help:        "Total number of accepted score updates",
		ConstLabels: labels,
	})

	m.scoreUpdateErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "score_update_errors_total",
		Help:        "Total number of score updates rejected by the ranked store",
		ConstLabels: labels,
	})

	m.leaderboardReads = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "leaderboard_reads_total",
		Help:        "Total number of leaderboard reads",
		ConstLabels: labels,
	})

	m.storeLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "store_latency_milliseconds",
			Help:        "Ranked store operation latency in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"backend", "operation"},
	)

	m.storeErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "store_errors_total",
			Help:        "Ranked store operation failures",
			ConstLabels: labels,
		},
		[]string{"backend", "operation"},
	)

	m.trackedGames = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "tracked_games",
		Help:        "Number of games held by the in-memory ranked store",
		ConstLabels: labels,
	})

	m.cacheRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "cache_requests_total",
			Help:        "Popularity cache lookups by result (hit, miss, error)",
			ConstLabels: labels,
		},
		[]string{"backend", "result"},
	)

	m.cacheInvalidations = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_invalidations_total",
		Help:        "Total number of cache invalidation calls",
		ConstLabels: labels,
	})

	m.popularityMarks = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "popularity_marks_total",
		Help:        "Total number of times a game's popularity flag was set or refreshed",
		ConstLabels: labels,
	})

	m.exportRuns = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "export_runs_total",
			Help:        "Export runs by outcome",
			ConstLabels: labels,
		},
		[]string{"result"},
	)

	m.exportDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "export_duration_milliseconds",
		Help:        "Duration of a full export run in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.exportedGames = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "exported_games_total",
		Help:        "Total number of games written to the durable store",
		ConstLabels: labels,
	})

	m.exportFailedGames = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "export_failed_games_total",
		Help:        "Total number of games whose export failed and were re-marked dirty",
		ConstLabels: labels,
	})

	m.dirtyGames = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dirty_games",
		Help:        "Games written since the last export",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_component_total",
			Help:        "Errors by component and type",
			ConstLabels: labels,
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_endpoint_total",
			Help:        "HTTP errors by endpoint, method and type",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "error_type"},
	)
}

// RecordScoreUpdate increments the accepted score updates counter.
func RecordScoreUpdate() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.scoreUpdates.Inc()
}

// RecordScoreUpdateError increments the failed score updates counter.
func RecordScoreUpdateError() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.scoreUpdateErrors.Inc()
}

// RecordLeaderboardRead increments the leaderboard reads counter.
func RecordLeaderboardRead() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.leaderboardReads.Inc()
}

// RecordStoreLatency records a ranked store operation latency in milliseconds.
func RecordStoreLatency(backend, operation string, latencyMs float64) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.storeLatency.WithLabelValues(backend, operation).Observe(latencyMs)
}

// RecordStoreError counts a failed ranked store operation.
func RecordStoreError(backend, operation string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.storeErrors.WithLabelValues(backend, operation).Inc()
}

// UpdateTrackedGames sets the number of games held in memory.
func UpdateTrackedGames(count int) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.trackedGames.Set(float64(count))
}

// RecordCacheHit counts a popularity cache hit.
func RecordCacheHit(backend string) {
	recordCache(backend, "hit")
}

// RecordCacheMiss counts a popularity cache miss.
func RecordCacheMiss(backend string) {
	recordCache(backend, "miss")
}

// RecordCacheError counts a failed popularity cache operation.
func RecordCacheError(backend string) {
	recordCache(backend, "error")
}

func recordCache(backend, result string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.cacheRequests.WithLabelValues(backend, result).Inc()
}

// RecordCacheInvalidation increments the cache invalidation counter.
func RecordCacheInvalidation() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.cacheInvalidations.Inc()
}

// RecordPopularityMark increments the popularity flag counter.
func RecordPopularityMark() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.popularityMarks.Inc()
}

// RecordExportRun records the outcome and duration of an export run.
func RecordExportRun(success bool, durationMs float64) {
	if !globalManager.enabled.Load() {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	globalManager.exportRuns.WithLabelValues(result).Inc()
	globalManager.exportDuration.Observe(durationMs)
}

// RecordExportedGames adds to the exported and failed game counters.
func RecordExportedGames(exported, failed int) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.exportedGames.Add(float64(exported))
	globalManager.exportFailedGames.Add(float64(failed))
}

// UpdateDirtyGames sets the dirty games gauge.
func UpdateDirtyGames(count int) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.dirtyGames.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error by component and type.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an HTTP error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// SetEnabled toggles recording on the global manager.
func SetEnabled(enabled bool) {
	globalManager.enabled.Store(enabled)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
