package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsSummary is a lightweight view of the collected metrics.
type MetricsSummary struct {
	Requests           uint64  `json:"requests"`
	AvgRequestMs       float64 `json:"avg_request_ms"`
	CacheHitRatio      float64 `json:"cache_hit_ratio"`
	SnapshotRefreshes  uint64  `json:"snapshot_refreshes"`
	Lectures           int     `json:"lectures"`
	Reschedules        int     `json:"reschedules"`
	ConflictedLectures int     `json:"conflicted_lectures"`
}

// MetricsService encapsulates Prometheus instrumentation for the timetable API.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	cacheLatency      prometheus.Observer
	cacheWrite        prometheus.Observer
	cacheHitRatio     prometheus.Gauge
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	refreshDuration   prometheus.Histogram
	refreshTotal      *prometheus.CounterVec
	snapshotAge       prometheus.Gauge
	snapshotSize      *prometheus.GaugeVec
	conflictedGauge   prometheus.Gauge
	validationResults *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	refreshCount         uint64
	lectureCount         int64
	rescheduleCount      int64
	conflictedCount      int64
}

// NewMetricsService registers the Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	refreshDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_snapshot_refresh_seconds",
		Help:    "Time spent loading a timetable snapshot",
		Buckets: prometheus.DefBuckets,
	})

	refreshTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_snapshot_refresh_total",
		Help: "Snapshot refreshes by outcome",
	}, []string{"outcome"})

	snapshotAge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_snapshot_taken_at_seconds",
		Help: "Unix time the current snapshot was taken",
	})

	snapshotSize := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "timetable_snapshot_records",
		Help: "Records held by the current snapshot",
	}, []string{"kind"})

	conflictedGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_conflicted_lectures",
		Help: "Lectures with at least one detected conflict",
	})

	validationResults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_validation_total",
		Help: "Candidate validations by target and result",
	}, []string{"target", "result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		refreshDuration, refreshTotal, snapshotAge, snapshotSize, conflictedGauge, validationResults, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		cacheLatency:      cacheLatency,
		cacheWrite:        cacheWrite,
		cacheHitRatio:     cacheHitRatio,
		cacheHits:         cacheHits,
		cacheMisses:       cacheMisses,
		refreshDuration:   refreshDuration,
		refreshTotal:      refreshTotal,
		snapshotAge:       snapshotAge,
		snapshotSize:      snapshotSize,
		conflictedGauge:   conflictedGauge,
		validationResults: validationResults,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveSnapshotRefresh records a snapshot reload. Sizes are only updated on success.
func (m *MetricsService) ObserveSnapshotRefresh(err error, duration time.Duration, takenAt time.Time, lectures, reschedules, conflicted int) {
	if m == nil {
		return
	}
	m.refreshDuration.Observe(duration.Seconds())
	if err != nil {
		m.refreshTotal.WithLabelValues("error").Inc()
		return
	}
	m.refreshTotal.WithLabelValues("ok").Inc()
	atomic.AddUint64(&m.refreshCount, 1)
	m.snapshotAge.Set(float64(takenAt.Unix()))
	m.snapshotSize.WithLabelValues("lectures").Set(float64(lectures))
	m.snapshotSize.WithLabelValues("reschedules").Set(float64(reschedules))
	m.conflictedGauge.Set(float64(conflicted))
	atomic.StoreInt64(&m.lectureCount, int64(lectures))
	atomic.StoreInt64(&m.rescheduleCount, int64(reschedules))
	atomic.StoreInt64(&m.conflictedCount, int64(conflicted))
}

// RecordValidation counts a candidate check. result is "ok", "invalid" or a conflict kind.
func (m *MetricsService) RecordValidation(target, result string) {
	if m == nil {
		return
	}
	m.validationResults.WithLabelValues(target, result).Inc()
}

// Summary returns aggregated metrics for the health endpoint.
func (m *MetricsService) Summary() MetricsSummary {
	if m == nil {
		return MetricsSummary{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var ratio float64
	if hits+misses > 0 {
		ratio = float64(hits) / float64(hits+misses)
	}
	var avgMs float64
	if requests > 0 {
		avgMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return MetricsSummary{
		Requests:           requests,
		AvgRequestMs:       avgMs,
		CacheHitRatio:      ratio,
		SnapshotRefreshes:  atomic.LoadUint64(&m.refreshCount),
		Lectures:           int(atomic.LoadInt64(&m.lectureCount)),
		Reschedules:        int(atomic.LoadInt64(&m.rescheduleCount)),
		ConflictedLectures: int(atomic.LoadInt64(&m.conflictedCount)),
	}
}
