package component

import (
	"slices"
	"strings"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

type listener struct {
	fn   vdom.Handler
	once bool
}

const hookEventPrefix = "hook:"

// On registers fn for event and returns a function that removes it.
// Listening to "hook:<name>" observes lifecycle hooks.
func (vm *Instance) On(event string, fn vdom.Handler) (off func()) {
	return vm.addListener(event, &listener{fn: fn})
}

// Once registers fn for the next emission of event only.
func (vm *Instance) Once(event string, fn vdom.Handler) (off func()) {
	return vm.addListener(event, &listener{fn: fn, once: true})
}

func (vm *Instance) addListener(event string, l *listener) func() {
	if vm.events == nil {
		vm.events = make(map[string][]*listener)
	}
	vm.events[event] = append(vm.events[event], l)
	if strings.HasPrefix(event, hookEventPrefix) {
		vm.hasHookEvent = true
	}
	return func() { vm.removeListener(event, l) }
}

func (vm *Instance) removeListener(event string, l *listener) {
	list := vm.events[event]
	if i := slices.Index(list, l); i >= 0 {
		vm.events[event] = slices.Delete(slices.Clone(list), i, i+1)
	}
}

// Off removes every listener for the given events, or every listener of
// the instance when called without arguments.
func (vm *Instance) Off(events ...string) {
	if len(events) == 0 {
		vm.events = nil
		return
	}
	for _, e := range events {
		delete(vm.events, e)
	}
}

// Emit calls the listeners of event with args. A panicking listener is
// reported to the error sink; the others still run.
func (vm *Instance) Emit(event string, args ...any) {
	list := vm.events[event]
	if len(list) == 0 {
		return
	}
	for _, l := range slices.Clone(list) {
		if l.once {
			vm.removeListener(event, l)
		}
		fn := l.fn
		vm.guard("C006", `event handler for "`+event+`"`, func() { fn(args...) })
	}
}

func (vm *Instance) initEvents(listeners map[string][]vdom.Handler) {
	if len(listeners) > 0 {
		vm.updateListeners(listeners)
	}
}

// updateListeners syncs the listeners the parent attached through the
// placeholder. Each event name gets one trampoline that reads the current
// handlers, so a parent re-render never re-registers unchanged names.
func (vm *Instance) updateListeners(listeners map[string][]vdom.Handler) {
	old := vm.parentListeners
	vm.parentListeners = listeners
	if vm.listenerOff == nil {
		vm.listenerOff = make(map[string]func())
	}
	for _, name := range sortedNames(listeners) {
		if len(listeners[name]) == 0 {
			continue
		}
		if _, ok := old[name]; ok && vm.listenerOff[name] != nil {
			continue
		}
		event, _, once, _ := vdom.ParseEventName(name)
		name := name
		trampoline := func(args ...any) {
			for _, fn := range vm.parentListeners[name] {
				fn(args...)
			}
		}
		if once {
			vm.listenerOff[name] = vm.Once(event, trampoline)
		} else {
			vm.listenerOff[name] = vm.On(event, trampoline)
		}
	}
	for _, name := range sortedNames(old) {
		if len(listeners[name]) > 0 {
			continue
		}
		if off := vm.listenerOff[name]; off != nil {
			off()
			delete(vm.listenerOff, name)
		}
	}
}

// CallHook runs the lifecycle hook name without dependency tracking.
// Panics are reported to the error sink. Listeners of "hook:<name>" run
// after the option hooks.
func (vm *Instance) CallHook(name string) {
	reactive.Untracked(func() {
		for _, h := range vm.opts.hooks(name) {
			vm.guard("C002", name+" hook", func() { h(vm) })
		}
		if vm.hasHookEvent {
			vm.Emit(hookEventPrefix + name)
		}
	})
}

// guard runs fn and reports a panic as a code error raised in vm.
func (vm *Instance) guard(code, info string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e := errors.New(code).WithDetail(info).Wrap(errors.FromPanic(r)).WithComponent(vm.Trace())
			errors.Handle(e, vm, info)
		}
	}()
	fn()
}
