package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Default tracer name.
const defaultTracerName = "reactor"

// TracerConfig configures a Tracer.
type TracerConfig struct {
	// TracerName is the instrumentation name (default: "reactor").
	TracerName string

	// Attributes are added to every span.
	Attributes []attribute.KeyValue

	// Tracer overrides the tracer taken from the global provider.
	Tracer trace.Tracer
}

// TracerOption configures a Tracer.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) { c.TracerName = name }
}

// WithAttributes adds attributes to every span, such as a session id.
func WithAttributes(attrs ...attribute.KeyValue) TracerOption {
	return func(c *TracerConfig) { c.Attributes = append(c.Attributes, attrs...) }
}

// WithTracer uses t instead of the global provider's tracer.
func WithTracer(t trace.Tracer) TracerOption {
	return func(c *TracerConfig) { c.Tracer = t }
}

// Tracer records a span for every scheduler flush and every patch. Spans
// are created when the work finishes, backdated to when it started, so a
// Tracer keeps no per-flush state and can be shared.
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracer is given. Configure it in main before creating the Tracer:
//
//	otel.SetTracerProvider(tp)
type Tracer struct {
	tracer trace.Tracer
	attrs  []attribute.KeyValue
}

var (
	_ reactive.FlushObserver = (*Tracer)(nil)
	_ vdom.PatchObserver     = (*Tracer)(nil)
)

// NewTracer creates a Tracer.
func NewTracer(opts ...TracerOption) *Tracer {
	config := TracerConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	t := config.Tracer
	if t == nil {
		t = otel.Tracer(config.TracerName)
	}
	return &Tracer{tracer: t, attrs: config.Attributes}
}

// FlushStarted implements reactive.FlushObserver.
func (t *Tracer) FlushStarted(int) {}

// FlushFinished implements reactive.FlushObserver.
func (t *Tracer) FlushFinished(ran int, elapsed time.Duration) {
	t.record("reactor.flush", elapsed, attribute.Int("reactor.watchers_ran", ran))
}

// LoopDetected implements reactive.FlushObserver.
func (t *Tracer) LoopDetected(w *reactive.Watcher) {
	attrs := append(t.spanAttrs(),
		attribute.Int64("reactor.watcher_id", int64(w.ID())),
		attribute.String("reactor.watcher_expression", w.Expression()),
	)
	_, span := t.tracer.Start(context.Background(), "reactor.update_loop",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	span.SetStatus(codes.Error, "infinite update loop")
	span.End()
}

// PatchFinished implements vdom.PatchObserver.
func (t *Tracer) PatchFinished(stats vdom.PatchStats, elapsed time.Duration) {
	t.record("reactor.patch", elapsed,
		attribute.Int("reactor.nodes_created", stats.Created),
		attribute.Int("reactor.nodes_removed", stats.Removed),
		attribute.Int("reactor.nodes_moved", stats.Moved),
		attribute.Int("reactor.nodes_patched", stats.Patched),
	)
}

func (t *Tracer) record(name string, elapsed time.Duration, attrs ...attribute.KeyValue) {
	end := time.Now()
	_, span := t.tracer.Start(context.Background(), name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(append(t.spanAttrs(), attrs...)...),
		trace.WithTimestamp(end.Add(-elapsed)),
	)
	span.End(trace.WithTimestamp(end))
}

func (t *Tracer) spanAttrs() []attribute.KeyValue {
	return append([]attribute.KeyValue(nil), t.attrs...)
}
