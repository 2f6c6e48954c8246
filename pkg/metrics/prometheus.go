// Package metrics provides Prometheus metrics for the prediction service.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultNamespace       = "bank"
	defaultSubsystem       = "predictor"
	defaultRefreshInterval = 10 * time.Second
)

// Latency histograms observe milliseconds: 0.05ms doubling up to ~1.6s.
var latencyBuckets = prometheus.ExponentialBuckets(0.05, 2, 16) //nolint:gochecknoglobals // shared bucket layout

// Manager manages all Prometheus metrics for the prediction service.
type Manager struct {
	namespace       string
	subsystem       string
	enabled         bool
	refreshInterval time.Duration
	registry        prometheus.Registerer

	// Prediction metrics
	predictions         *prometheus.CounterVec
	predictionErrors    *prometheus.CounterVec
	probability         prometheus.Histogram
	featureBuildLatency prometheus.Histogram
	inferenceLatency    prometheus.Histogram
	modelFeatureCount   prometheus.Gauge

	// History pipeline metrics
	historyWrites      prometheus.Counter
	historyWriteErrors prometheus.Counter
	historyDropped     prometheus.Counter
	historyRecords     prometheus.Gauge
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	workerCount        prometheus.Gauge
	workerWriteLatency prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// global pairs the active manager with the registry /metrics serves.
type global struct {
	manager  *Manager
	registry *prometheus.Registry
}

var current atomic.Pointer[global] //nolint:gochecknoglobals // intentional global for singleton metrics manager

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	Configure()
}

// Configure replaces the global manager with one built from opts on a fresh
// custom registry. It is meant to run once at start-up; metrics recorded
// before the call are discarded.
func Configure(opts ...Option) *Manager {
	registry := prometheus.NewRegistry()
	m := NewManager(append(opts, WithPrometheusRegistry(registry))...)
	current.Store(&global{manager: m, registry: registry})
	return m
}

// active returns the global manager, or nil when recording is disabled.
func active() *Manager {
	m := current.Load().manager
	if !m.enabled {
		return nil
	}
	return m
}

// RefreshInterval is how often callers should refresh gauge snapshots.
func RefreshInterval() time.Duration {
	return current.Load().manager.refreshInterval
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       defaultNamespace,
		subsystem:       defaultSubsystem,
		enabled:         true,
		refreshInterval: defaultRefreshInterval,
		registry:        prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(
		m.counterOpts("predictions_total", "Total number of predictions served by decision"),
		[]string{"decision"},
	)
	m.predictionErrors = auto.NewCounterVec(
		m.counterOpts("prediction_errors_total", "Total number of failed predictions by error kind"),
		[]string{"kind"},
	)
	m.probability = auto.NewHistogram(m.histogramOpts(
		"probability", "Distribution of positive-class probabilities",
		[]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
	))
	m.featureBuildLatency = auto.NewHistogram(m.histogramOpts(
		"feature_build_latency_milliseconds", "Feature vector construction latency in milliseconds", latencyBuckets,
	))
	m.inferenceLatency = auto.NewHistogram(m.histogramOpts(
		"inference_latency_milliseconds", "Classifier inference latency in milliseconds", latencyBuckets,
	))
	m.modelFeatureCount = auto.NewGauge(m.gaugeOpts("model_feature_count", "Number of features in the loaded classifier schema"))

	m.historyWrites = auto.NewCounter(m.counterOpts("history_writes_total", "Total number of prediction records persisted"))
	m.historyWriteErrors = auto.NewCounter(m.counterOpts("history_write_errors_total", "Total number of failed prediction record writes"))
	m.historyDropped = auto.NewCounter(m.counterOpts("history_dropped_total", "Total number of prediction records dropped on a full queue"))
	m.historyRecords = auto.NewGauge(m.gaugeOpts("history_records", "Number of prediction records held by the history store"))
	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current size of the history queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum history queue capacity"))
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Number of history writer workers"))
	m.workerWriteLatency = auto.NewHistogram(m.histogramOpts(
		"worker_write_latency_milliseconds", "History write latency in milliseconds", latencyBuckets,
	))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", latencyBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// RecordPrediction counts a served prediction and observes its probability.
func RecordPrediction(decision bool, probability float64) {
	m := active()
	if m == nil {
		return
	}
	label := "negative"
	if decision {
		label = "positive"
	}
	m.predictions.WithLabelValues(label).Inc()
	m.probability.Observe(probability)
}

// RecordPredictionError counts a failed prediction by kind, e.g. "inference".
func RecordPredictionError(kind string) {
	if m := active(); m != nil {
		m.predictionErrors.WithLabelValues(kind).Inc()
	}
}

// RecordFeatureBuildLatency records feature vector construction latency.
func RecordFeatureBuildLatency(latencyMs float64) {
	if m := active(); m != nil {
		m.featureBuildLatency.Observe(latencyMs)
	}
}

// RecordInferenceLatency records classifier latency.
func RecordInferenceLatency(latencyMs float64) {
	if m := active(); m != nil {
		m.inferenceLatency.Observe(latencyMs)
	}
}

// UpdateModelFeatureCount sets the schema width of the loaded classifier.
func UpdateModelFeatureCount(count int) {
	if m := active(); m != nil {
		m.modelFeatureCount.Set(float64(count))
	}
}

// RecordHistoryWrite increments the persisted records counter.
func RecordHistoryWrite() {
	if m := active(); m != nil {
		m.historyWrites.Inc()
	}
}

// RecordHistoryWriteError increments the failed writes counter.
func RecordHistoryWriteError() {
	if m := active(); m != nil {
		m.historyWriteErrors.Inc()
	}
}

// RecordHistoryDropped increments the dropped records counter.
func RecordHistoryDropped() {
	if m := active(); m != nil {
		m.historyDropped.Inc()
	}
}

// UpdateHistoryRecords sets the number of stored records.
func UpdateHistoryRecords(count int) {
	if m := active(); m != nil {
		m.historyRecords.Set(float64(count))
	}
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if m := active(); m != nil {
		m.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	if m := active(); m != nil {
		m.queueCapacity.Set(float64(capacity))
	}
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	if m := active(); m != nil {
		m.workerCount.Set(float64(count))
	}
}

// RecordWorkerWriteLatency records the latency of one history write.
func RecordWorkerWriteLatency(latencyMs float64) {
	if m := active(); m != nil {
		m.workerWriteLatency.Observe(latencyMs)
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if m := active(); m != nil {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if m := active(); m != nil {
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if m := active(); m != nil {
		m.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m := active(); m != nil {
		m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if m := active(); m != nil {
		m.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if m := active(); m != nil {
		m.systemGoroutineCount.Set(float64(count))
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return current.Load().registry
}
