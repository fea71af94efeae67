package reactive

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/vango-dev/reactor/internal/errors"
)

// DefaultMaxUpdateCount bounds how many times one watcher may be
// re-queued within a single flush before it is treated as an infinite
// update loop.
const DefaultMaxUpdateCount = 100

// Ticker schedules a function to run once the current synchronous work is
// finished. pkg/loop provides a microtask implementation.
type Ticker interface {
	Schedule(fn func())
}

// TickerFunc adapts a function to Ticker.
type TickerFunc func(fn func())

// Schedule calls f(fn).
func (f TickerFunc) Schedule(fn func()) { f(fn) }

// Activatable is queued by the scheduler and activated after the watcher
// pass of a flush. Kept-alive component instances implement it.
type Activatable interface {
	Activate()
}

// FlushObserver receives flush lifecycle events.
type FlushObserver interface {
	FlushStarted(pending int)
	FlushFinished(ran int, elapsed time.Duration)
	LoopDetected(w *Watcher)
}

// Scheduler batches watcher runs. Watchers notified during synchronous
// work are deduplicated and run together, ordered by id, on the next tick.
type Scheduler struct {
	queue     []*Watcher
	activated []Activatable
	has       map[uint64]bool
	circular  map[uint64]int
	dropped   map[uint64]bool
	waiting   bool
	flushing  bool
	index     int

	callbacks []func()
	pending   bool

	maxUpdateCount int
	ticker         Ticker
	observer       FlushObserver
	logger         *slog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithTicker sets the tick source. Without one, callbacks wait for Tick.
func WithTicker(t Ticker) SchedulerOption {
	return func(s *Scheduler) { s.ticker = t }
}

// WithMaxUpdateCount overrides DefaultMaxUpdateCount.
func WithMaxUpdateCount(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxUpdateCount = n
		}
	}
}

// WithFlushObserver installs a flush lifecycle observer.
func WithFlushObserver(o FlushObserver) SchedulerOption {
	return func(s *Scheduler) { s.observer = o }
}

// WithLogger sets the logger for flush diagnostics.
func WithLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

// NewScheduler creates a scheduler.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		has:            make(map[uint64]bool),
		circular:       make(map[uint64]int),
		dropped:        make(map[uint64]bool),
		maxUpdateCount: DefaultMaxUpdateCount,
		logger:         slog.Default().With("component", "scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	defaultMu        sync.RWMutex
	defaultScheduler = NewScheduler()
)

// Default returns the scheduler used by watchers created without
// WithScheduler.
func Default() *Scheduler {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultScheduler
}

// SetDefault replaces the default scheduler and returns the previous one.
func SetDefault(s *Scheduler) *Scheduler {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultScheduler
	defaultScheduler = s
	return prev
}

// SetTicker replaces the tick source.
func (s *Scheduler) SetTicker(t Ticker) {
	s.ticker = t
}

// Enqueue queues w for the next flush. A watcher already queued is
// ignored. During a flush, w is inserted in id order after the cursor so
// it still runs in the current pass.
func (s *Scheduler) Enqueue(w *Watcher) {
	id := w.id
	if s.has[id] {
		return
	}
	if s.flushing && s.dropped[id] {
		return
	}
	s.has[id] = true
	if !s.flushing {
		s.queue = append(s.queue, w)
	} else {
		i := len(s.queue) - 1
		for i > s.index && s.queue[i].id > id {
			i--
		}
		s.queue = slices.Insert(s.queue, i+1, w)
	}
	if !s.waiting {
		s.waiting = true
		s.NextTick(s.Flush)
	}
}

// QueueActivated queues a kept-alive instance for activation after the
// watcher pass of the coming flush.
func (s *Scheduler) QueueActivated(a Activatable) {
	s.activated = append(s.activated, a)
}

// Pending returns the number of queued watchers.
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// Flushing reports whether a flush is in progress.
func (s *Scheduler) Flushing() bool {
	return s.flushing
}

// Flush runs every queued watcher in ascending id order. Parents are
// created before children, so they update first, and a child destroyed
// during its parent's run is skipped. Panics are reported to the error
// sink and never escape the flush.
func (s *Scheduler) Flush() {
	if s.flushing {
		return
	}
	start := time.Now()
	s.flushing = true

	slices.SortFunc(s.queue, func(a, b *Watcher) int {
		return cmp.Compare(a.id, b.id)
	})
	if s.observer != nil {
		s.observer.FlushStarted(len(s.queue))
	}

	ran := 0
	for s.index = 0; s.index < len(s.queue); s.index++ {
		w := s.queue[s.index]
		id := w.id
		delete(s.has, id)
		s.runWatcher(w)
		ran++
		if s.has[id] {
			s.circular[id]++
			if s.circular[id] > s.maxUpdateCount {
				s.dropWatcher(w)
			}
		}
	}

	activated := s.activated
	updated := s.ranWatchers()
	s.reset()

	for _, a := range activated {
		s.safely(nil, "activated hook", a.Activate)
	}
	for i := len(updated) - 1; i >= 0; i-- {
		w := updated[i]
		if w.updated != nil && w.active {
			s.safely(w.owner, "updated hook", w.updated)
		}
	}

	elapsed := time.Since(start)
	if s.observer != nil {
		s.observer.FlushFinished(ran, elapsed)
	}
	s.logger.Debug("flush", "watchers", ran, "elapsed", elapsed)
}

func (s *Scheduler) runWatcher(w *Watcher) {
	defer func() {
		if r := recover(); r != nil {
			info := "watcher run"
			if w.expression != "" {
				info = `watcher "` + w.expression + `"`
			}
			errors.Handle(errors.FromPanic(r), w.owner, info)
		}
	}()
	if w.before != nil {
		w.before()
	}
	w.Run()
}

// dropWatcher reports an infinite update loop once and ignores further
// reschedules of w until the flush ends.
func (s *Scheduler) dropWatcher(w *Watcher) {
	id := w.id
	s.dropped[id] = true
	delete(s.has, id)
	for j := s.index + 1; j < len(s.queue); j++ {
		if s.queue[j] == w {
			s.queue = slices.Delete(s.queue, j, j+1)
			break
		}
	}
	if s.observer != nil {
		s.observer.LoopDetected(w)
	}
	e := errors.New("S001")
	if w.expression != "" {
		e = e.WithDetail(`in watcher with expression "` + w.expression + `"`)
	}
	errors.Handle(e, w.owner, "scheduler flush")
}

// ranWatchers returns the watchers of the finished pass, once each, in run
// order.
func (s *Scheduler) ranWatchers() []*Watcher {
	seen := make(map[uint64]bool, len(s.queue))
	out := make([]*Watcher, 0, len(s.queue))
	for _, w := range s.queue {
		if !seen[w.id] {
			seen[w.id] = true
			out = append(out, w)
		}
	}
	return out
}

func (s *Scheduler) reset() {
	s.index = 0
	s.queue = nil
	s.activated = nil
	clear(s.has)
	clear(s.circular)
	clear(s.dropped)
	s.waiting = false
	s.flushing = false
}

func (s *Scheduler) safely(scope Scope, info string, fn func()) {
	defer errors.Recover(scope, info)
	fn()
}

func runTick(cb func()) {
	defer errors.RecoverAs("S002", nil, "nextTick")
	cb()
}

// NextTick runs fn after the current synchronous work. Callbacks queued
// before the tick fires run together, in order.
func (s *Scheduler) NextTick(fn func()) {
	s.callbacks = append(s.callbacks, fn)
	if s.pending {
		return
	}
	s.pending = true
	if s.ticker != nil {
		s.ticker.Schedule(s.flushCallbacks)
	}
}

// Tick runs the callbacks queued so far. Hosts without a ticker call it to
// drive the scheduler; callbacks queued while it runs wait for the next
// Tick.
func (s *Scheduler) Tick() {
	if s.pending {
		s.flushCallbacks()
	}
}

// Drain calls Tick until no callback is pending, bounded by rounds.
// It returns true when the scheduler went idle.
func (s *Scheduler) Drain(rounds int) bool {
	for i := 0; i < rounds; i++ {
		if !s.pending {
			return true
		}
		s.flushCallbacks()
	}
	return !s.pending
}

func (s *Scheduler) flushCallbacks() {
	s.pending = false
	cbs := s.callbacks
	s.callbacks = nil
	for _, cb := range cbs {
		runTick(cb)
	}
}
