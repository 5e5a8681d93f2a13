package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the relief service.
type Manager struct {
	namespace             string
	subsystem             string
	histogramBuckets      []float64
	recommendationBuckets []float64
	constLabels           map[string]string
	registry              prometheus.Registerer

	// Matching
	matchRequests           *prometheus.CounterVec
	matchLatency            *prometheus.HistogramVec
	volunteersConsidered    prometheus.Counter
	volunteersSkipped       *prometheus.CounterVec
	recommendationsReturned prometheus.Histogram
	scoringMode             *prometheus.CounterVec

	// Classification and triage
	classifications *prometheus.CounterVec
	triageRequests  *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec

	// Scoring queue
	queueCapacity      prometheus.Gauge
	queueSize          prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Scoring workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:             "relief",
		subsystem:             "matching",
		histogramBuckets:      prometheus.DefBuckets,
		recommendationBuckets: []float64{0, 1, 2, 3, 5, 10, 20, 50},
		constLabels:           map[string]string{},
		registry:              prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.matchRequests = auto.NewCounterVec(
		m.counterOpts("match_requests_total", "Total match requests by profile and outcome"),
		[]string{"profile", "outcome"},
	)
	m.matchLatency = auto.NewHistogramVec(
		m.histogramOpts("match_latency_milliseconds", "End-to-end match latency in milliseconds", m.histogramBuckets),
		[]string{"profile"},
	)
	m.volunteersConsidered = auto.NewCounter(
		m.counterOpts("volunteers_considered_total", "Volunteers that passed validation and were scored"),
	)
	m.volunteersSkipped = auto.NewCounterVec(
		m.counterOpts("volunteers_skipped_total", "Volunteers excluded from matching by reason"),
		[]string{"reason"},
	)
	m.recommendationsReturned = auto.NewHistogram(
		m.histogramOpts("recommendations_returned", "Number of recommendations returned per match", m.recommendationBuckets),
	)
	m.scoringMode = auto.NewCounterVec(
		m.counterOpts("scoring_runs_total", "Scoring runs by execution mode (inline, pool)"),
		[]string{"mode"},
	)

	m.classifications = auto.NewCounterVec(
		m.counterOpts("classifications_total", "Emergency classifications by type and priority"),
		[]string{"type", "priority"},
	)
	m.triageRequests = auto.NewCounterVec(
		m.counterOpts("triage_requests_total", "Chat triage requests by urgency level"),
		[]string{"level"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint, method and error type"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)

	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Capacity of the scoring job queue"))
	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current number of queued scoring jobs"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Scoring jobs enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Scoring jobs dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(
		m.counterOpts("queue_enqueue_errors_total", "Scoring jobs rejected by a full or closed queue"),
	)

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured number of scoring workers"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active", "Scoring workers currently running"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogramOpts("worker_processing_latency_milliseconds", "Per-job scoring latency in milliseconds", m.histogramBuckets),
	)
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Scoring jobs that failed to deliver a result"))

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap memory in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_milliseconds", "Most recent GC pause in milliseconds", m.histogramBuckets),
	)
}

// RecordMatch records a finished match request.
func RecordMatch(profile, outcome string, latencyMs float64) {
	globalManager.matchRequests.WithLabelValues(profile, outcome).Inc()
	globalManager.matchLatency.WithLabelValues(profile).Observe(latencyMs)
}

// RecordVolunteersConsidered adds to the number of scored volunteers.
func RecordVolunteersConsidered(n int) {
	globalManager.volunteersConsidered.Add(float64(n))
}

// RecordVolunteerSkipped increments the skipped counter for a reason.
func RecordVolunteerSkipped(reason string) {
	globalManager.volunteersSkipped.WithLabelValues(reason).Inc()
}

// RecordRecommendations observes the size of a returned recommendation list.
func RecordRecommendations(n int) {
	globalManager.recommendationsReturned.Observe(float64(n))
}

// RecordScoringMode counts a scoring run by mode.
func RecordScoringMode(mode string) {
	globalManager.scoringMode.WithLabelValues(mode).Inc()
}

// RecordClassification counts a classification result.
func RecordClassification(emergencyType, priority string) {
	globalManager.classifications.WithLabelValues(emergencyType, priority).Inc()
}

// RecordTriage counts a chat triage request.
func RecordTriage(level string) {
	globalManager.triageRequests.WithLabelValues(level).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
