package reactive

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/vango-dev/reactor/internal/errors"
)

func TestScheduler_BatchesWrites(t *testing.T) {
	s := newTestScheduler()
	state := ObjectOf("n", 0)
	Observe(state, true)

	runs := 0
	NewWatcher(nil, func() any { return state.Get("n") }, func(n, o any) { runs++ }, WithScheduler(s))

	for i := 1; i <= 10; i++ {
		state.Set("n", i)
	}
	if s.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", s.Pending())
	}
	s.Tick()

	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}

func TestScheduler_RunsInIDOrder(t *testing.T) {
	s := newTestScheduler()
	state := ObjectOf("a", 0, "b", 0)
	Observe(state, true)

	var order []string
	NewWatcher(nil, func() any { return state.Get("a") }, func(n, o any) { order = append(order, "parent") }, WithScheduler(s))
	NewWatcher(nil, func() any { return state.Get("b") }, func(n, o any) { order = append(order, "child") }, WithScheduler(s))

	state.Set("b", 1)
	state.Set("a", 1)
	s.Tick()

	if len(order) != 2 || order[0] != "parent" || order[1] != "child" {
		t.Errorf("order = %v, want [parent child]", order)
	}
}

func TestScheduler_EnqueueDuringFlush(t *testing.T) {
	s := newTestScheduler()
	state := ObjectOf("a", 0, "b", 0)
	Observe(state, true)

	var bSeen any
	NewWatcher(nil, func() any { return state.Get("a") }, func(n, o any) {
		state.Set("b", n)
	}, WithScheduler(s))
	NewWatcher(nil, func() any { return state.Get("b") }, func(n, o any) { bSeen = n }, WithScheduler(s))

	state.Set("a", 7)
	s.Tick()

	if bSeen != 7 {
		t.Errorf("b watcher saw %v, want 7 in the same flush", bSeen)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", s.Pending())
	}
}

func TestScheduler_InfiniteLoopReportedOnce(t *testing.T) {
	rec := record(t)
	s := newTestScheduler()
	state := ObjectOf("count", 0)
	Observe(state, true)

	runs := 0
	NewWatcher(nil, func() any { return state.Get("count") }, func(n, o any) {
		runs++
		state.Set("count", n.(int)+1)
	}, User(), Expression("count"), WithScheduler(s))

	state.Set("count", 1)
	s.Tick()

	if runs != DefaultMaxUpdateCount+1 {
		t.Errorf("runs = %d, want %d", runs, DefaultMaxUpdateCount+1)
	}
	if rec.errCount() != 1 {
		t.Fatalf("reported errors = %d, want 1", rec.errCount())
	}
	var e *errors.Error
	if !stderrors.As(rec.errs[0], &e) || e.Code != "S001" {
		t.Errorf("error = %v, want S001", rec.errs[0])
	}
	if s.Flushing() {
		t.Error("scheduler still flushing")
	}
}

func TestScheduler_PanicDoesNotEscapeFlush(t *testing.T) {
	rec := record(t)
	s := newTestScheduler()
	state := ObjectOf("n", 0)
	Observe(state, true)

	ran := false
	NewWatcher(nil, func() any { return state.Get("n") }, func(n, o any) { panic("first") }, WithScheduler(s))
	NewWatcher(nil, func() any { return state.Get("n") }, func(n, o any) { ran = true }, WithScheduler(s))

	state.Set("n", 1)
	s.Tick()

	if !ran {
		t.Error("second watcher did not run after first panicked")
	}
	if rec.errCount() != 1 {
		t.Errorf("reported errors = %d, want 1", rec.errCount())
	}
}

type activation struct {
	events *[]string
}

func (a activation) Activate() { *a.events = append(*a.events, "activate") }

func TestScheduler_HookOrder(t *testing.T) {
	s := newTestScheduler()
	state := ObjectOf("n", 0)
	Observe(state, true)

	var events []string
	NewWatcher(nil, func() any { return state.Get("n") }, func(n, o any) {
		events = append(events, "run1")
	}, WithScheduler(s),
		Before(func() { events = append(events, "before1") }),
		OnUpdated(func() { events = append(events, "updated1") }))
	NewWatcher(nil, func() any { return state.Get("n") }, func(n, o any) {
		events = append(events, "run2")
	}, WithScheduler(s),
		OnUpdated(func() { events = append(events, "updated2") }))

	s.QueueActivated(activation{&events})
	state.Set("n", 1)
	s.Tick()

	want := []string{"before1", "run1", "run2", "activate", "updated2", "updated1"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events = %v, want %v", events, want)
			break
		}
	}
}

func TestScheduler_UpdatedHookStartsFreshCycle(t *testing.T) {
	s := newTestScheduler()
	state := ObjectOf("n", 0, "m", 0)
	Observe(state, true)

	var mSeen any
	NewWatcher(nil, func() any { return state.Get("n") }, nil, WithScheduler(s),
		OnUpdated(func() { state.Set("m", 1) }))
	NewWatcher(nil, func() any { return state.Get("m") }, func(n, o any) { mSeen = n }, WithScheduler(s))

	state.Set("n", 1)
	if !s.Drain(5) {
		t.Fatal("scheduler did not go idle")
	}
	if mSeen != 1 {
		t.Errorf("m watcher saw %v, want 1", mSeen)
	}
}

func TestScheduler_NextTickBatchesSchedule(t *testing.T) {
	var scheduled []func()
	s := NewScheduler(WithTicker(TickerFunc(func(fn func()) {
		scheduled = append(scheduled, fn)
	})))

	var order []int
	s.NextTick(func() { order = append(order, 1) })
	s.NextTick(func() { order = append(order, 2) })

	if len(scheduled) != 1 {
		t.Fatalf("ticker scheduled %d times, want 1", len(scheduled))
	}
	scheduled[0]()

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
}

func TestScheduler_NextTickPanicDoesNotStopQueue(t *testing.T) {
	rec := record(t)
	s := newTestScheduler()

	ran := false
	s.NextTick(func() { panic("tick") })
	s.NextTick(func() { ran = true })
	s.Tick()

	if !ran {
		t.Error("callback after the panicking one did not run")
	}
	if rec.errCount() != 1 {
		t.Fatalf("errors = %d, want 1", rec.errCount())
	}
	var e *errors.Error
	if !stderrors.As(rec.errs[0], &e) || e.Code != "S002" {
		t.Errorf("error = %v, want S002", rec.errs[0])
	}
}

type flushRecorder struct {
	started, finished, loops int
}

func (f *flushRecorder) FlushStarted(int)                 { f.started++ }
func (f *flushRecorder) FlushFinished(int, time.Duration) { f.finished++ }
func (f *flushRecorder) LoopDetected(*Watcher)            { f.loops++ }

func TestScheduler_FlushObserver(t *testing.T) {
	record(t)
	obs := &flushRecorder{}
	s := NewScheduler(WithFlushObserver(obs), WithMaxUpdateCount(3))
	state := ObjectOf("n", 0)
	Observe(state, true)

	NewWatcher(nil, func() any { return state.Get("n") }, func(n, o any) {
		state.Set("n", n.(int)+1)
	}, WithScheduler(s))

	state.Set("n", 1)
	s.Tick()

	if obs.started != 1 || obs.finished != 1 {
		t.Errorf("started = %d finished = %d, want 1 1", obs.started, obs.finished)
	}
	if obs.loops != 1 {
		t.Errorf("loops = %d, want 1", obs.loops)
	}
}
