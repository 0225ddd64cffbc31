// Package metrics provides Prometheus metrics for the SECCARD scoring service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the SECCARD service.
type Manager struct {
	registry *prometheus.Registry

	// Core Business Metrics - What really matters for a scoring pipeline
	sessionsScored     prometheus.Counter
	sessionsDuplicate  prometheus.Counter
	sessionScore       prometheus.Histogram
	dailyAverageSample prometheus.Counter

	// Certificate Metrics - Render pipeline health
	certificatesRendered prometheus.Counter
	renderErrors         prometheus.Counter
	renderLatency        prometheus.Histogram

	// Storage Metrics - Best-effort persistence visibility
	storageWriteErrors prometheus.Counter
	storageReadErrors  prometheus.Counter

	// Operational Health Metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueDequeued    prometheus.Counter
	workerCount      prometheus.Gauge
	sessionLogSize   prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var (
	globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager
	managerOnce   sync.Once //nolint:gochecknoglobals // guards globalManager initialization
)

// newManager builds the manager and registers every metric on a private registry.
func newManager() *Manager {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Manager{
		registry: registry,

		sessionsScored: factory.NewCounter(prometheus.CounterOpts{
			Name: "seccard_sessions_scored_total",
			Help: "Total number of scoring runs completed.",
		}),
		sessionsDuplicate: factory.NewCounter(prometheus.CounterOpts{
			Name: "seccard_sessions_duplicate_total",
			Help: "Total number of re-submitted sessions rejected by the deduper.",
		}),
		sessionScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "seccard_session_score",
			Help:    "Distribution of computed session scores.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		dailyAverageSample: factory.NewCounter(prometheus.CounterOpts{
			Name: "seccard_daily_average_samples_total",
			Help: "Total number of scores folded into a daily bucket.",
		}),

		certificatesRendered: factory.NewCounter(prometheus.CounterOpts{
			Name: "seccard_certificates_rendered_total",
			Help: "Total number of certificate artifacts composed.",
		}),
		renderErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "seccard_certificate_render_errors_total",
			Help: "Total number of failed certificate compositions.",
		}),
		renderLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "seccard_certificate_render_duration_ms",
			Help:    "Certificate composition latency in milliseconds.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),

		storageWriteErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "seccard_storage_write_errors_total",
			Help: "Total number of swallowed durable-write failures.",
		}),
		storageReadErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "seccard_storage_read_errors_total",
			Help: "Total number of durable-read failures.",
		}),

		queueSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "seccard_render_queue_size",
			Help: "Current number of queued certificate render jobs.",
		}),
		queueCapacity: factory.NewGauge(prometheus.GaugeOpts{
			Name: "seccard_render_queue_capacity",
			Help: "Configured capacity of the render queue.",
		}),
		queueUtilization: factory.NewGauge(prometheus.GaugeOpts{
			Name: "seccard_render_queue_utilization",
			Help: "Render queue utilization ratio (0-1).",
		}),
		queueEnqueued: factory.NewCounter(prometheus.CounterOpts{
			Name: "seccard_render_queue_enqueued_total",
			Help: "Total number of render jobs enqueued.",
		}),
		queueDequeued: factory.NewCounter(prometheus.CounterOpts{
			Name: "seccard_render_queue_dequeued_total",
			Help: "Total number of render jobs dequeued.",
		}),
		workerCount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "seccard_render_workers",
			Help: "Number of running render workers.",
		}),
		sessionLogSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "seccard_session_log_size",
			Help: "Current number of records in the session log.",
		}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "seccard_http_requests_total",
			Help: "Total HTTP requests by endpoint, method and status.",
		}, []string{"endpoint", "method", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seccard_http_request_duration_ms",
			Help:    "HTTP request latency in milliseconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}, []string{"endpoint", "method", "status"}),

		systemMemoryUsage: factory.NewGauge(prometheus.GaugeOpts{
			Name: "seccard_system_memory_bytes",
			Help: "Current allocated heap memory in bytes.",
		}),
		systemGoroutineCount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "seccard_system_goroutines",
			Help: "Current number of goroutines.",
		}),
		systemGCPauseTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "seccard_system_gc_pause_ms",
			Help:    "Average GC pause time in milliseconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
}

// get returns the global manager, initializing it on first use.
func get() *Manager {
	managerOnce.Do(func() {
		globalManager = newManager()
	})
	return globalManager
}

// GetRegistry exposes the metrics registry for the /healthz handler.
func GetRegistry() *prometheus.Registry {
	return get().registry
}

// Business metrics helpers.

// RecordSessionScored counts a completed scoring run and observes its score.
func RecordSessionScored(score int) {
	m := get()
	m.sessionsScored.Inc()
	m.sessionScore.Observe(float64(score))
}

// RecordSessionDuplicate counts a session rejected as already-seen.
func RecordSessionDuplicate() { get().sessionsDuplicate.Inc() }

// RecordDailyAverageSample counts a score folded into a daily bucket.
func RecordDailyAverageSample() { get().dailyAverageSample.Inc() }

// Certificate metrics helpers.

// RecordCertificateRendered counts a successful composition.
func RecordCertificateRendered() { get().certificatesRendered.Inc() }

// RecordRenderError counts a failed composition.
func RecordRenderError() { get().renderErrors.Inc() }

// RecordRenderLatency observes composition latency in milliseconds.
func RecordRenderLatency(ms float64) { get().renderLatency.Observe(ms) }

// Storage metrics helpers.

// RecordStorageWriteError counts a swallowed durable-write failure.
func RecordStorageWriteError() { get().storageWriteErrors.Inc() }

// RecordStorageReadError counts a durable-read failure.
func RecordStorageReadError() { get().storageReadErrors.Inc() }

// Queue and worker metrics helpers.

// UpdateQueueSize sets the current render queue length.
func UpdateQueueSize(n int) { get().queueSize.Set(float64(n)) }

// UpdateQueueCapacity sets the configured render queue capacity.
func UpdateQueueCapacity(n int) { get().queueCapacity.Set(float64(n)) }

// UpdateQueueUtilization sets the render queue utilization ratio.
func UpdateQueueUtilization(ratio float64) { get().queueUtilization.Set(ratio) }

// RecordQueueEnqueue counts an enqueued render job.
func RecordQueueEnqueue() { get().queueEnqueued.Inc() }

// RecordQueueDequeue counts a dequeued render job.
func RecordQueueDequeue() { get().queueDequeued.Inc() }

// UpdateWorkerCount sets the number of running render workers.
func UpdateWorkerCount(n int) { get().workerCount.Set(float64(n)) }

// UpdateSessionLogSize sets the current session log length.
func UpdateSessionLogSize(n int) { get().sessionLogSize.Set(float64(n)) }

// HTTP metrics helpers.

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	get().httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes HTTP latency in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	get().httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

// System metrics helpers.

// UpdateSystemMemoryUsage sets the current allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) { get().systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the current goroutine count.
func UpdateSystemGoroutineCount(n int) { get().systemGoroutineCount.Set(float64(n)) }

// RecordSystemGCPauseTime observes the average GC pause in milliseconds.
func RecordSystemGCPauseTime(ms float64) { get().systemGCPauseTime.Observe(ms) }
