// Package telemetry exports scheduler, patcher and session activity to
// Prometheus and OpenTelemetry.
//
// Metrics and Tracer both implement reactive.FlushObserver and
// vdom.PatchObserver, so either can be passed straight to a scheduler or a
// patcher. Use Flushes and Patches to attach several observers at once:
//
//	m := telemetry.NewMetrics(telemetry.WithNamespace("myapp"))
//	tr := telemetry.NewTracer()
//	sched := reactive.NewScheduler(
//		reactive.WithFlushObserver(telemetry.Flushes(m, tr)),
//	)
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
package telemetry
