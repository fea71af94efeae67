// Package loop provides the single-goroutine event loop that owns a
// reactive tree.
//
// Work from other goroutines enters through Post (a macrotask). Work
// scheduled with Schedule from inside a task (a microtask) runs as soon
// as the current task returns, before the next task is taken. A
// reactive.Scheduler that uses the loop as its Ticker therefore flushes
// watchers right after the mutation that queued them.
package loop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	rerrors "github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/internal/goid"
)

var (
	// ErrClosed is returned when posting to a stopped loop.
	ErrClosed = errors.New("loop: closed")

	// ErrQueueFull is returned when the task queue is at capacity.
	ErrQueueFull = errors.New("loop: task queue full")

	// ErrRunning is returned when Run is called twice.
	ErrRunning = errors.New("loop: already running")
)

// DefaultQueueSize is the task queue capacity.
const DefaultQueueSize = 256

// Loop runs tasks one at a time on the goroutine that called Run.
type Loop struct {
	tasks  chan func()
	stop   chan struct{}
	done   chan struct{}
	logger *slog.Logger

	// micro is only touched by the loop goroutine.
	micro []func()

	owner    atomic.Uint64
	running  atomic.Bool
	closed   atomic.Bool
	stopOnce sync.Once
}

// Option configures a Loop.
type Option func(*Loop)

// WithQueueSize sets the task queue capacity.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.tasks = make(chan func(), n)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// New creates a loop. It does nothing until Run is called.
func New(opts ...Option) *Loop {
	l := &Loop{
		tasks:  make(chan func(), DefaultQueueSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: slog.Default().With("component", "loop"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run processes tasks until Stop is called or ctx is cancelled. Microtasks
// drain after every task. Panics are reported to the error sink and do not
// stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	l.owner.Store(goid.ID())
	defer close(l.done)
	defer l.closed.Store(true)

	l.logger.Debug("loop started")
	for {
		select {
		case fn := <-l.tasks:
			l.runTask(fn)
			l.drainMicrotasks()

		case <-l.stop:
			l.logger.Debug("loop stopped")
			return nil

		case <-ctx.Done():
			l.logger.Debug("loop cancelled", "error", ctx.Err())
			return ctx.Err()
		}
	}
}

// Post queues fn as a macrotask. It is safe to call from any goroutine.
func (l *Loop) Post(fn func()) error {
	if l.closed.Load() {
		return ErrClosed
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrClosed
	default:
		l.logger.Warn("task queue full, discarding task")
		return ErrQueueFull
	}
}

// Do posts fn and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Schedule queues fn as a microtask. Called off the loop goroutine it
// falls back to Post.
func (l *Loop) Schedule(fn func()) {
	if l.OnLoop() {
		l.micro = append(l.micro, fn)
		return
	}
	if err := l.Post(fn); err != nil {
		l.logger.Warn("schedule failed", "error", err)
	}
}

// OnLoop reports whether the caller runs on the loop goroutine.
func (l *Loop) OnLoop() bool {
	return l.running.Load() && l.owner.Load() == goid.ID()
}

// Stop ends Run after the current task. Queued tasks are discarded.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		l.closed.Store(true)
		close(l.stop)
	})
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) drainMicrotasks() {
	for len(l.micro) > 0 {
		fn := l.micro[0]
		l.micro[0] = nil
		l.micro = l.micro[1:]
		l.runTask(fn)
	}
	l.micro = nil
}

func (l *Loop) runTask(fn func()) {
	defer rerrors.Recover(nil, "loop task")
	fn()
}
