package reactive

import (
	"github.com/vango-dev/reactor/internal/errors"
)

// Scope routes errors raised by user watchers. Component instances
// implement it; a nil Scope sends errors straight to the global handler.
type Scope = errors.Scope

// Watcher evaluates a getter while recording every Dep it reads, and
// re-runs when any of them publishes.
//
// A Watcher runs synchronously on the goroutine that owns its reactive
// tree. It is not safe for concurrent use.
type Watcher struct {
	id     uint64
	owner  Scope
	getter func() any
	cb     func(newVal, oldVal any)

	deep   bool
	user   bool
	lazy   bool
	sync   bool
	dirty  bool
	active bool

	deps      []*Dep
	newDeps   []*Dep
	depIDs    map[uint64]struct{}
	newDepIDs map[uint64]struct{}

	value      any
	before     func()
	updated    func()
	onError    func(err error, info string)
	expression string
	scheduler  *Scheduler
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// Deep makes the watcher traverse its value, subscribing to every nested
// field, and fire its callback even when the top-level value is unchanged.
func Deep() WatcherOption {
	return func(w *Watcher) { w.deep = true }
}

// User marks a watcher created by application code. Panics in its getter
// and callback are routed to the error sink instead of propagating.
func User() WatcherOption {
	return func(w *Watcher) { w.user = true }
}

// Lazy defers evaluation until Evaluate is called. Notifications only mark
// the watcher dirty.
func Lazy() WatcherOption {
	return func(w *Watcher) {
		w.lazy = true
		w.dirty = true
	}
}

// Sync runs the watcher immediately on notification instead of queueing
// it on the scheduler.
func Sync() WatcherOption {
	return func(w *Watcher) { w.sync = true }
}

// Before installs a hook the scheduler calls right before each queued run.
func Before(fn func()) WatcherOption {
	return func(w *Watcher) { w.before = fn }
}

// OnUpdated installs a hook the scheduler calls after the flush in which
// the watcher ran, in reverse run order.
func OnUpdated(fn func()) WatcherOption {
	return func(w *Watcher) { w.updated = fn }
}

// Expression sets the description used in diagnostics.
func Expression(expr string) WatcherOption {
	return func(w *Watcher) { w.expression = expr }
}

// WithScheduler queues the watcher on s instead of the default scheduler.
func WithScheduler(s *Scheduler) WatcherOption {
	return func(w *Watcher) { w.scheduler = s }
}

// OnError replaces error sink routing for this user watcher.
func OnError(fn func(err error, info string)) WatcherOption {
	return func(w *Watcher) { w.onError = fn }
}

// NewWatcher creates a watcher. Unless Lazy is given, the getter is
// evaluated immediately and its result becomes the initial value. cb may
// be nil; owner may be nil.
func NewWatcher(owner Scope, getter func() any, cb func(newVal, oldVal any), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		id:        nextWatcherID(),
		owner:     owner,
		getter:    getter,
		cb:        cb,
		active:    true,
		depIDs:    make(map[uint64]struct{}),
		newDepIDs: make(map[uint64]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.getter == nil {
		w.getter = func() any { return nil }
	}
	if w.scheduler == nil {
		w.scheduler = Default()
	}
	if !w.lazy {
		w.value = w.Get()
	}
	return w
}

// ID returns the unique identifier for this watcher.
func (w *Watcher) ID() uint64 {
	return w.id
}

// Value returns the last evaluated value.
func (w *Watcher) Value() any {
	return w.value
}

// Dirty reports whether a lazy watcher needs re-evaluation.
func (w *Watcher) Dirty() bool {
	return w.dirty
}

// Active reports whether the watcher has not been torn down.
func (w *Watcher) Active() bool {
	return w.active
}

// Expression returns the diagnostic description.
func (w *Watcher) Expression() string {
	return w.expression
}

// Owner returns the scope the watcher belongs to.
func (w *Watcher) Owner() Scope {
	return w.owner
}

// DepCount returns the number of Deps recorded by the last evaluation.
func (w *Watcher) DepCount() int {
	return len(w.deps)
}

// Get evaluates the getter with the watcher as the current evaluator and
// replaces the recorded Deps with the ones just read. Cleanup runs even
// when the getter panics. A panic in a user watcher is reported and Get
// returns nil; any other panic propagates after cleanup.
func (w *Watcher) Get() any {
	var value any
	pushTarget(w)
	func() {
		defer func() {
			if w.deep {
				Traverse(value)
			}
			popTarget()
			w.cleanupDeps()
		}()
		if w.user {
			defer func() {
				if r := recover(); r != nil {
					value = nil
					w.report(errors.FromPanic(r), `getter for watcher "`+w.expression+`"`)
				}
			}()
		}
		value = w.getter()
	}()
	return value
}

// AddDep records d for the evaluation in progress and subscribes to it if
// the previous evaluation had not.
func (w *Watcher) AddDep(d *Dep) {
	id := d.id
	if _, ok := w.newDepIDs[id]; ok {
		return
	}
	w.newDepIDs[id] = struct{}{}
	w.newDeps = append(w.newDeps, d)
	if _, ok := w.depIDs[id]; !ok {
		d.AddSub(w)
	}
}

// cleanupDeps unsubscribes from Deps the last evaluation did not read and
// makes the new set canonical.
func (w *Watcher) cleanupDeps() {
	for _, d := range w.deps {
		if _, ok := w.newDepIDs[d.id]; !ok {
			d.RemoveSub(w)
		}
	}
	w.depIDs, w.newDepIDs = w.newDepIDs, w.depIDs
	clear(w.newDepIDs)
	w.deps, w.newDeps = w.newDeps, w.deps[:0]
}

// Update is called by a Dep when a dependency changed.
func (w *Watcher) Update() {
	switch {
	case w.lazy:
		w.dirty = true
	case w.sync:
		w.Run()
	default:
		w.scheduler.Enqueue(w)
	}
}

// Run re-evaluates an active watcher and fires the callback when the value
// changed, is a container, or the watcher is deep.
func (w *Watcher) Run() {
	if !w.active {
		return
	}
	value := w.Get()
	if SameValue(value, w.value) && !isContainer(value) && !w.deep {
		return
	}
	old := w.value
	w.value = value
	if w.cb == nil {
		return
	}
	if !w.user {
		w.cb(value, old)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			w.report(errors.FromPanic(r), `callback for watcher "`+w.expression+`"`)
		}
	}()
	w.cb(value, old)
}

// Evaluate re-runs a lazy watcher's getter and clears the dirty flag.
func (w *Watcher) Evaluate() {
	w.value = w.Get()
	w.dirty = false
}

// Depend makes the current evaluator depend on everything this watcher
// depends on. Computed values use it to pass their dependencies outward.
func (w *Watcher) Depend() {
	t := currentTarget()
	if t == nil {
		return
	}
	for _, d := range w.deps {
		t.AddDep(d)
	}
}

// Teardown unsubscribes the watcher from every Dep. A torn-down watcher
// never runs again, even if it is still queued.
func (w *Watcher) Teardown() {
	if !w.active {
		return
	}
	for _, d := range w.deps {
		d.RemoveSub(w)
	}
	w.active = false
}

func (w *Watcher) report(err error, info string) {
	if w.onError != nil {
		w.onError(err, info)
		return
	}
	errors.Handle(err, w.owner, info)
}
