package component

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/vango-dev/reactor/internal/errors"
)

// AsyncComponent is a component definition loaded on first render. Until
// Load resolves, an empty placeholder is rendered in its place; every
// instance that rendered it re-renders once the definition arrives.
//
// Load may call resolve or reject from any goroutine; the result is
// applied through the tree's Post function. Only the first call counts.
type AsyncComponent struct {
	Load func(resolve func(def any), reject func(err error))

	// Loading is rendered while Load is pending, once Delay elapsed.
	// A zero Delay shows it immediately.
	Loading any
	Delay   time.Duration

	// Error is rendered after Load failed or Timeout elapsed.
	Error   any
	Timeout time.Duration

	mu       sync.Mutex
	started  bool
	inLoad   bool
	resolved *Ctor
	failed   bool
	loading  bool
	owners   []*Instance
	timers   []*time.Timer
}

// Resolved implements vdom.AsyncFactory.
func (a *AsyncComponent) Resolved() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.resolved != nil
}

// Failed implements vdom.AsyncFactory.
func (a *AsyncComponent) Failed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failed
}

// resolveFor returns the constructor to render for owner right now: the
// loaded one, the Error or Loading component, or nil for a placeholder.
// The first call starts Load.
func (a *AsyncComponent) resolveFor(owner *Instance) *Ctor {
	a.mu.Lock()
	if a.failed && a.Error != nil {
		a.mu.Unlock()
		return toCtor(a.Error)
	}
	if a.resolved != nil {
		defer a.mu.Unlock()
		return a.resolved
	}
	if !slices.Contains(a.owners, owner) {
		a.owners = append(a.owners, owner)
		owner.On(hookEventPrefix+HookDestroyed, func(...any) { a.forget(owner) })
	}
	if a.started {
		showLoading := a.loading && a.Loading != nil
		a.mu.Unlock()
		if showLoading {
			return toCtor(a.Loading)
		}
		return nil
	}
	a.started = true
	a.inLoad = true
	a.mu.Unlock()

	post := owner.env.post
	var once sync.Once

	resolve := func(def any) {
		once.Do(func() {
			apply := func() {
				ctor := toCtor(def)
				a.mu.Lock()
				a.resolved = ctor
				inLoad := a.inLoad
				a.mu.Unlock()
				if inLoad {
					a.reset()
				} else {
					a.forceRender(true)
				}
			}
			post(apply)
		})
	}
	reject := func(err error) {
		once.Do(func() {
			post(func() {
				errors.WarnError(errors.New("C004").Wrap(err), "trace", owner.Trace())
				if a.Error == nil {
					return
				}
				a.mu.Lock()
				a.failed = true
				a.mu.Unlock()
				a.forceRender(true)
			})
		})
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				reject(errors.FromPanic(r))
			}
		}()
		a.Load(resolve, reject)
	}()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.inLoad = false
	if a.resolved != nil {
		return a.resolved
	}
	if a.Loading != nil {
		if a.Delay <= 0 {
			a.loading = true
		} else {
			a.timers = append(a.timers, time.AfterFunc(a.Delay, func() {
				post(func() {
					a.mu.Lock()
					pending := a.resolved == nil && !a.failed
					if pending {
						a.loading = true
					}
					a.mu.Unlock()
					if pending {
						a.forceRender(false)
					}
				})
			}))
		}
	}
	if a.Timeout > 0 {
		a.timers = append(a.timers, time.AfterFunc(a.Timeout, func() {
			reject(fmt.Errorf("timeout (%s)", a.Timeout))
		}))
	}
	if a.loading {
		return toCtor(a.Loading)
	}
	return nil
}

// forceRender re-renders every owner. Once rendering is complete the owner
// list and pending timers are cleared.
func (a *AsyncComponent) forceRender(completed bool) {
	a.mu.Lock()
	owners := slices.Clone(a.owners)
	a.mu.Unlock()
	for _, o := range owners {
		o.ForceUpdate()
	}
	if completed {
		a.reset()
	}
}

func (a *AsyncComponent) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.owners = nil
	for _, t := range a.timers {
		t.Stop()
	}
	a.timers = nil
}

func (a *AsyncComponent) forget(owner *Instance) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i := slices.Index(a.owners, owner); i >= 0 {
		a.owners = slices.Delete(a.owners, i, i+1)
	}
}

// toCtor turns a component definition into a constructor.
func toCtor(def any) *Ctor {
	switch d := def.(type) {
	case *Ctor:
		return d
	case *Options:
		return Base.Extend(d)
	}
	errors.WarnError(errors.New("C004").WithDetail(fmt.Sprintf("Invalid component definition: %T", def)))
	return nil
}
