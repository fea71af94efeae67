package telemetry

import (
	"errors"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/reactor/pkg/loop"
	"github.com/vango-dev/reactor/pkg/protocol"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "reactor").
	Namespace string

	Subsystem string

	// ConstLabels are added to every metric.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush and patch durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is where the collectors are registered.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures Metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "reactor",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics collects Prometheus metrics:
//
//   - reactor_flushes_total: scheduler flushes
//   - reactor_watcher_runs_total: watchers run by flushes
//   - reactor_flush_queue_length: watchers pending when the last flush started
//   - reactor_flush_duration_seconds: flush duration
//   - reactor_update_loops_total: watchers dropped as infinite update loops
//   - reactor_patches_total: Patch calls
//   - reactor_patch_nodes_total: nodes touched by patches, by op
//   - reactor_patch_duration_seconds: patch duration
//   - reactor_active_sessions: open remote sessions
//   - reactor_frames_sent_total: mutation frames sent
//   - reactor_ops_sent_total: mutation ops sent
//   - reactor_protocol_errors_total: rejected client input, by type
//
// A Metrics value is safe for concurrent use by many schedulers.
type Metrics struct {
	flushes        prometheus.Counter
	watcherRuns    prometheus.Counter
	queueLength    prometheus.Gauge
	flushDuration  prometheus.Histogram
	loops          prometheus.Counter
	patches        prometheus.Counter
	patchNodes     *prometheus.CounterVec
	patchDuration  prometheus.Histogram
	activeSessions prometheus.Gauge
	framesSent     prometheus.Counter
	opsSent        prometheus.Counter
	protocolErrors *prometheus.CounterVec
}

var (
	_ reactive.FlushObserver = (*Metrics)(nil)
	_ vdom.PatchObserver     = (*Metrics)(nil)
)

// NewMetrics creates and registers the collectors. Registering twice with
// the same registry panics, so create one Metrics per registry.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}
	histogram := func(name, help string) prometheus.Histogram {
		return factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		})
	}

	return &Metrics{
		flushes:     counter("flushes_total", "Total number of scheduler flushes"),
		watcherRuns: counter("watcher_runs_total", "Total number of watchers run by flushes"),
		queueLength: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_queue_length",
			Help:        "Watchers pending when the last flush started",
			ConstLabels: config.ConstLabels,
		}),
		flushDuration: histogram("flush_duration_seconds", "Scheduler flush duration in seconds"),
		loops:         counter("update_loops_total", "Watchers dropped as infinite update loops"),
		patches:       counter("patches_total", "Total number of patch calls"),
		patchNodes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patch_nodes_total",
			Help:        "Nodes touched by patches",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),
		patchDuration: histogram("patch_duration_seconds", "Patch duration in seconds"),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of open remote sessions",
			ConstLabels: config.ConstLabels,
		}),
		framesSent: counter("frames_sent_total", "Total number of mutation frames sent"),
		opsSent:    counter("ops_sent_total", "Total number of mutation ops sent"),
		protocolErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "protocol_errors_total",
			Help:        "Rejected client input by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// FlushStarted implements reactive.FlushObserver.
func (m *Metrics) FlushStarted(pending int) {
	m.queueLength.Set(float64(pending))
}

// FlushFinished implements reactive.FlushObserver.
func (m *Metrics) FlushFinished(ran int, elapsed time.Duration) {
	m.flushes.Inc()
	m.watcherRuns.Add(float64(ran))
	m.flushDuration.Observe(elapsed.Seconds())
}

// LoopDetected implements reactive.FlushObserver.
func (m *Metrics) LoopDetected(*reactive.Watcher) {
	m.loops.Inc()
}

// PatchFinished implements vdom.PatchObserver.
func (m *Metrics) PatchFinished(stats vdom.PatchStats, elapsed time.Duration) {
	m.patches.Inc()
	m.patchDuration.Observe(elapsed.Seconds())
	for op, n := range map[string]int{
		"created": stats.Created,
		"removed": stats.Removed,
		"moved":   stats.Moved,
		"patched": stats.Patched,
	} {
		if n > 0 {
			m.patchNodes.WithLabelValues(op).Add(float64(n))
		}
	}
}

// SessionStarted records a new remote session.
func (m *Metrics) SessionStarted() {
	m.activeSessions.Inc()
}

// SessionEnded records a closed remote session.
func (m *Metrics) SessionEnded() {
	m.activeSessions.Dec()
}

// FrameSent records a mutation frame of ops operations.
func (m *Metrics) FrameSent(ops int) {
	m.framesSent.Inc()
	m.opsSent.Add(float64(ops))
}

// ProtocolError records rejected client input.
func (m *Metrics) ProtocolError(err error) {
	m.protocolErrors.WithLabelValues(categorizeError(err)).Inc()
}

// categorizeError maps err to a fixed label value so error messages never
// become label values.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, protocol.ErrFrameTooLarge),
		errors.Is(err, protocol.ErrStringTooLarge),
		errors.Is(err, protocol.ErrCountTooLarge):
		return "too_large"
	case errors.Is(err, protocol.ErrInvalidFrameType):
		return "invalid_frame"
	case errors.Is(err, protocol.ErrVarintOverflow),
		errors.Is(err, protocol.ErrInvalidBool),
		errors.Is(err, protocol.ErrUnknownOp):
		return "malformed"
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "truncated"
	case errors.Is(err, loop.ErrQueueFull):
		return "backpressure"
	case errors.Is(err, loop.ErrClosed):
		return "closed"
	default:
		return "internal"
	}
}
