package component

import (
	stderrors "errors"
	"slices"
	"sync"
	"testing"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/dom"
	"github.com/vango-dev/reactor/pkg/reactive"
)

// testApp is a mounted root instance with its own scheduler.
type testApp struct {
	vm    *Instance
	doc   *dom.Document
	root  *dom.Node
	sched *reactive.Scheduler
}

func mountApp(t *testing.T, opts *Options) *testApp {
	t.Helper()
	doc := dom.New()
	root := doc.NewElement("main")
	s := reactive.NewScheduler()
	vm := NewApp(opts, InstanceOptions{Ops: doc, Scheduler: s}).MountInto(root)
	return &testApp{vm: vm, doc: doc, root: root, sched: s}
}

// flush runs every pending tick.
func (a *testApp) flush(t *testing.T) {
	t.Helper()
	if !a.sched.Drain(10) {
		t.Fatal("scheduler did not go idle")
	}
}

func (a *testApp) html() string {
	return a.root.InnerHTML()
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// hook returns a lifecycle hook that records "<name> <event>".
func (r *recorder) hook(name, event string) []HookFunc {
	return []HookFunc{func(*Instance) { r.add(name + " " + event) }}
}

func recordWarnings(t *testing.T) *recorder {
	t.Helper()
	r := &recorder{}
	prev := errors.SetWarnHandler(func(e *errors.Error, _ ...any) { r.add(e.Code) })
	t.Cleanup(func() { errors.SetWarnHandler(prev) })
	return r
}

type handledError struct {
	err  error
	info string
}

type errorRecorder struct {
	mu   sync.Mutex
	errs []handledError
}

func (r *errorRecorder) list() []handledError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.errs)
}

func (r *errorRecorder) codes() []string {
	var out []string
	for _, h := range r.list() {
		var e *errors.Error
		if stderrors.As(h.err, &e) {
			out = append(out, e.Code)
		} else {
			out = append(out, "")
		}
	}
	return out
}

func recordErrors(t *testing.T) *errorRecorder {
	t.Helper()
	r := &errorRecorder{}
	prev := errors.SetGlobalHandler(func(err error, _ errors.Scope, info string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.errs = append(r.errs, handledError{err: err, info: info})
	})
	t.Cleanup(func() { errors.SetGlobalHandler(prev) })
	return r
}
