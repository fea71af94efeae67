package telemetry

import (
	"time"

	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

type flushFanout []reactive.FlushObserver

// Flushes returns an observer that forwards to every non-nil observer in
// order.
func Flushes(observers ...reactive.FlushObserver) reactive.FlushObserver {
	var f flushFanout
	for _, o := range observers {
		if o != nil {
			f = append(f, o)
		}
	}
	return f
}

func (f flushFanout) FlushStarted(pending int) {
	for _, o := range f {
		o.FlushStarted(pending)
	}
}

func (f flushFanout) FlushFinished(ran int, elapsed time.Duration) {
	for _, o := range f {
		o.FlushFinished(ran, elapsed)
	}
}

func (f flushFanout) LoopDetected(w *reactive.Watcher) {
	for _, o := range f {
		o.LoopDetected(w)
	}
}

type patchFanout []vdom.PatchObserver

// Patches returns an observer that forwards to every non-nil observer in
// order.
func Patches(observers ...vdom.PatchObserver) vdom.PatchObserver {
	var f patchFanout
	for _, o := range observers {
		if o != nil {
			f = append(f, o)
		}
	}
	return f
}

func (f patchFanout) PatchFinished(stats vdom.PatchStats, elapsed time.Duration) {
	for _, o := range f {
		o.PatchFinished(stats, elapsed)
	}
}
