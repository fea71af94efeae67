package reactive

import (
	"sync"
	"testing"

	"github.com/vango-dev/reactor/internal/errors"
)

// recorder collects warnings and handled errors during a test.
type recorder struct {
	mu       sync.Mutex
	warnings []string
	errs     []error
	infos    []string
}

func (r *recorder) warnCodes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.warnings...)
}

func (r *recorder) errCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

func record(t *testing.T) *recorder {
	t.Helper()
	r := &recorder{}
	prevWarn := errors.SetWarnHandler(func(e *errors.Error, attrs ...any) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.warnings = append(r.warnings, e.Code)
	})
	prevGlobal := errors.SetGlobalHandler(func(err error, scope errors.Scope, info string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.errs = append(r.errs, err)
		r.infos = append(r.infos, info)
	})
	t.Cleanup(func() {
		errors.SetWarnHandler(prevWarn)
		errors.SetGlobalHandler(prevGlobal)
	})
	return r
}

// newTestScheduler returns a manually ticked scheduler.
func newTestScheduler() *Scheduler {
	return NewScheduler()
}
