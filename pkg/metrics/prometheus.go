// Package metrics provides Prometheus metrics for the ghost racing core.
package metrics

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every collector registered by this package.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Race lifecycle
	racesStarted     *prometheus.CounterVec
	racesFinished    *prometheus.CounterVec
	racesCancelled   *prometheus.CounterVec
	stateTransitions *prometheus.CounterVec
	framesRecorded   prometheus.Histogram
	finishTime       prometheus.Histogram
	tickLatency      prometheus.Histogram

	// Ghost storage
	ghostSaves         prometheus.Counter
	ghostSaveErrors    prometheus.Counter
	ghostSaveLatency   prometheus.Histogram
	ghostLoads         *prometheus.CounterVec
	ghostRejections    *prometheus.CounterVec
	sharedAvailable    prometheus.Gauge
	sharedIgnored      prometheus.Counter
	sharedDuplicates   prometheus.Counter
	sharedScanLatency  prometheus.Histogram
	pendingSaves       prometheus.Gauge
	inputQueueSize     prometheus.Gauge
	inputQueueCapacity prometheus.Gauge
	inputDropped       prometheus.Counter

	// HTTP status surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// installed pairs the manager behind the package-level helpers with the
// registry served on /healthz.
type installed struct {
	manager  *Manager
	registry *prometheus.Registry
}

var global atomic.Pointer[installed] //nolint:gochecknoglobals // singleton metrics manager

func init() { //nolint:gochecknoinits // global metrics setup
	Configure()
}

// Configure replaces the global manager with one built from opts on a fresh
// registry. Call it once at startup, before anything is recorded; counts held
// by the previous manager are not carried over.
func Configure(opts ...Option) *Manager {
	reg := prometheus.NewRegistry()
	m := NewManager(append(opts, WithPrometheusRegistry(reg))...)
	global.Store(&installed{manager: m, registry: reg})
	return m
}

func current() *Manager {
	return global.Load().manager
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ghostrun",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	if !m.enabled {
		// Collectors still exist so the Record helpers stay safe, they are just never exported.
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()
	return m
}

// RunSystemCollector samples heap and goroutine counts every refresh interval until ctx is done.
func (m *Manager) RunSystemCollector(ctx context.Context) {
	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()

	m.sampleSystem()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sampleSystem()
		}
	}
}

func (m *Manager) sampleSystem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.systemMemoryUsage.Set(float64(ms.HeapAlloc))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
}

// Global returns the manager behind the package-level helpers.
func Global() *Manager {
	return current()
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.racesStarted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "races_started_total",
		Help: "Races that entered the countdown, by mode",
	}, []string{"mode"})

	m.racesFinished = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "races_finished_total",
		Help: "Races that crossed the finish line, by outcome",
	}, []string{"outcome"})

	m.racesCancelled = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "races_cancelled_total",
		Help: "Races that were cancelled, by reason",
	}, []string{"reason"})

	m.stateTransitions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "state_transitions_total",
		Help: "Race state machine transitions",
	}, []string{"from", "to"})

	m.framesRecorded = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "recording_frames",
		Help:    "Frames in a finished recording",
		Buckets: prometheus.ExponentialBuckets(60, 2, 12),
	})

	m.finishTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "finish_time_seconds",
		Help:    "Finish times of completed races",
		Buckets: prometheus.LinearBuckets(30, 30, 20),
	})

	m.tickLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "tick_latency_milliseconds",
		Help:    "Time spent in one core tick",
		Buckets: m.histogramBuckets,
	})

	m.ghostSaves = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "ghost_saves_total",
		Help: "Personal ghost files written",
	})

	m.ghostSaveErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "ghost_save_errors_total",
		Help: "Personal ghost writes that failed",
	})

	m.ghostSaveLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "ghost_save_latency_milliseconds",
		Help:    "Time to encode and write a personal ghost",
		Buckets: m.histogramBuckets,
	})

	m.ghostLoads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "ghost_loads_total",
		Help: "Ghost loads by source (personal, shared) and result",
	}, []string{"source", "result"})

	m.ghostRejections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "ghost_rejections_total",
		Help: "Untrusted ghost files rejected, by error kind",
	}, []string{"kind"})

	m.sharedAvailable = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "shared_ghosts_available",
		Help: "Valid shared ghosts found by the last scan",
	})

	m.sharedIgnored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "shared_files_ignored_total",
		Help: "Shared files skipped because the scan cap was reached",
	})

	m.sharedDuplicates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "shared_duplicates_total",
		Help: "Shared files skipped as duplicates of an earlier file",
	})

	m.sharedScanLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "shared_scan_latency_milliseconds",
		Help:    "Time to scan the shared folder",
		Buckets: m.histogramBuckets,
	})

	m.pendingSaves = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "pending_saves",
		Help: "Saves waiting in the background writer",
	})

	m.inputQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "input_queue_size",
		Help: "Inputs waiting for the next tick",
	})

	m.inputQueueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "input_queue_capacity",
		Help: "Capacity of the input queue",
	})

	m.inputDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "input_dropped_total",
		Help: "Inputs dropped because the queue was full or closed",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "system_memory_bytes",
		Help: "Heap bytes allocated",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "system_goroutines",
		Help: "Number of goroutines",
	})
}

// Race lifecycle.

// RecordRaceStarted counts a race entering the countdown. mode is first_run, personal or shared.
func RecordRaceStarted(mode string) {
	current().racesStarted.WithLabelValues(mode).Inc()
}

// RecordRaceFinished counts a finished race by outcome and observes its time.
func RecordRaceFinished(outcome string, seconds float64) {
	current().racesFinished.WithLabelValues(outcome).Inc()
	current().finishTime.Observe(seconds)
}

// RecordRaceCancelled counts a cancelled race by reason.
func RecordRaceCancelled(reason string) {
	current().racesCancelled.WithLabelValues(reason).Inc()
}

// RecordStateTransition counts a state machine transition.
func RecordStateTransition(from, to string) {
	current().stateTransitions.WithLabelValues(from, to).Inc()
}

// RecordFramesRecorded observes the frame count of a finished recording.
func RecordFramesRecorded(frames int) {
	current().framesRecorded.Observe(float64(frames))
}

// RecordTickLatency observes the duration of one tick.
func RecordTickLatency(latencyMs float64) {
	current().tickLatency.Observe(latencyMs)
}

// Ghost storage.

// RecordGhostSaved counts a successful personal write and its latency.
func RecordGhostSaved(latencyMs float64) {
	current().ghostSaves.Inc()
	current().ghostSaveLatency.Observe(latencyMs)
}

// RecordGhostSaveError counts a failed personal write.
func RecordGhostSaveError() {
	current().ghostSaveErrors.Inc()
}

// RecordGhostLoad counts a load attempt. source is personal or shared; result is ok, missing or rejected.
func RecordGhostLoad(source, result string) {
	current().ghostLoads.WithLabelValues(source, result).Inc()
}

// RecordGhostRejected counts an untrusted file rejected for kind.
func RecordGhostRejected(kind string) {
	current().ghostRejections.WithLabelValues(kind).Inc()
}

// UpdateSharedGhostsAvailable sets the number of valid shared ghosts.
func UpdateSharedGhostsAvailable(count int) {
	current().sharedAvailable.Set(float64(count))
}

// RecordSharedFilesIgnored counts files skipped by the scan cap.
func RecordSharedFilesIgnored(count int) {
	current().sharedIgnored.Add(float64(count))
}

// RecordSharedDuplicate counts a shared file skipped as a duplicate.
func RecordSharedDuplicate() {
	current().sharedDuplicates.Inc()
}

// RecordSharedScanLatency observes the duration of a shared folder scan.
func RecordSharedScanLatency(latencyMs float64) {
	current().sharedScanLatency.Observe(latencyMs)
}

// UpdatePendingSaves sets the number of queued background saves.
func UpdatePendingSaves(count int) {
	current().pendingSaves.Set(float64(count))
}

// Input queue.

// UpdateInputQueueSize sets the number of queued inputs.
func UpdateInputQueueSize(size int) {
	current().inputQueueSize.Set(float64(size))
}

// UpdateInputQueueCapacity sets the input queue capacity.
func UpdateInputQueueCapacity(capacity int) {
	current().inputQueueCapacity.Set(float64(capacity))
}

// RecordInputDropped counts a dropped input.
func RecordInputDropped() {
	current().inputDropped.Inc()
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	current().httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	current().httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// System.

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	current().systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	current().systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry the global manager exports to. It is
// empty when metrics are disabled.
func GetRegistry() *prometheus.Registry {
	return global.Load().registry
}
