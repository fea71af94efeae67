package reactive

import (
	"sync"

	"github.com/vango-dev/reactor/internal/goid"
)

// trackingContext holds the evaluation state for one goroutine.
// All reactive reads and writes of a tree are expected to happen on the
// goroutine that owns it; the context only keeps unrelated goroutines
// (tests, independent trees) from seeing each other's evaluators.
type trackingContext struct {
	// targets is the evaluation stack. The top entry is the watcher that
	// reactive reads subscribe. A nil entry suspends tracking.
	targets []*Watcher

	// observingOff counts nested ToggleObserving(false) sections.
	observingOff int
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map

// lookupTrackingContext returns the context for the current goroutine, or
// nil when none exists.
func lookupTrackingContext() (*trackingContext, uint64) {
	gid := goid.ID()
	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext), gid
	}
	return nil, gid
}

// getTrackingContext returns the context for the current goroutine,
// creating it on first use.
func getTrackingContext() (*trackingContext, uint64) {
	ctx, gid := lookupTrackingContext()
	if ctx == nil {
		ctx = &trackingContext{}
		trackingContexts.Store(gid, ctx)
	}
	return ctx, gid
}

// release drops the context once it carries no state.
func (c *trackingContext) release(gid uint64) {
	if len(c.targets) == 0 && c.observingOff == 0 {
		trackingContexts.Delete(gid)
	}
}

// currentTarget returns the watcher currently collecting dependencies.
func currentTarget() *Watcher {
	ctx, _ := lookupTrackingContext()
	if ctx == nil || len(ctx.targets) == 0 {
		return nil
	}
	return ctx.targets[len(ctx.targets)-1]
}

// pushTarget makes w the current evaluator. Pushing nil suspends tracking
// until the matching popTarget.
func pushTarget(w *Watcher) {
	ctx, _ := getTrackingContext()
	ctx.targets = append(ctx.targets, w)
}

// popTarget restores the previous evaluator.
func popTarget() {
	ctx, gid := lookupTrackingContext()
	if ctx == nil || len(ctx.targets) == 0 {
		return
	}
	ctx.targets[len(ctx.targets)-1] = nil
	ctx.targets = ctx.targets[:len(ctx.targets)-1]
	ctx.release(gid)
}

// Untracked runs fn without registering any reactive read as a
// dependency of the current evaluator. Lifecycle hooks and data factories
// run this way.
func Untracked(fn func()) {
	pushTarget(nil)
	defer popTarget()
	fn()
}

// IsTracking reports whether a watcher is currently collecting
// dependencies on this goroutine.
func IsTracking() bool {
	return currentTarget() != nil
}

// ToggleObserving enables or disables observation of new values on this
// goroutine. Props propagated from a parent are already observed by the
// parent, so the child disables observation while assigning them.
// Calls nest: every ToggleObserving(false) must be paired with a
// ToggleObserving(true).
func ToggleObserving(on bool) {
	ctx, gid := getTrackingContext()
	if on {
		if ctx.observingOff > 0 {
			ctx.observingOff--
		}
		ctx.release(gid)
		return
	}
	ctx.observingOff++
}

// shouldObserve reports whether new containers get an Observer.
func shouldObserve() bool {
	ctx, _ := lookupTrackingContext()
	return ctx == nil || ctx.observingOff == 0
}
