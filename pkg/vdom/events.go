package vdom

import (
	"slices"
	"sort"
	"strings"

	"github.com/vango-dev/reactor/internal/errors"
)

// Handler receives an event. For DOM events args[0] is the event value;
// component events pass whatever the emitter passed.
type Handler func(args ...any)

// Invoker is the single listener registered with the target for one
// event name. Patching swaps its handlers without rebinding, so a
// re-render never adds or removes target listeners for unchanged event
// names.
type Invoker struct {
	Event   string
	Capture bool
	Once    bool
	Passive bool

	fns    []Handler
	scope  errors.Scope
	remove func()
}

// Handlers returns the current handlers.
func (inv *Invoker) Handlers() []Handler {
	return slices.Clone(inv.fns)
}

// Invoke calls every handler in order. A panicking handler is reported to
// the error sink of the component that registered it; the remaining
// handlers still run.
func (inv *Invoker) Invoke(args ...any) {
	for _, fn := range slices.Clone(inv.fns) {
		inv.call(fn, args)
	}
	if inv.Once && inv.remove != nil {
		inv.remove()
	}
}

func (inv *Invoker) call(fn Handler, args []any) {
	defer errors.Recover(inv.scope, "v-on handler")
	fn(args...)
}

// ParseEventName strips the modifier prefixes from an event name:
// '&' passive, '~' once and '!' capture, in that order.
func ParseEventName(name string) (event string, passive, once, capture bool) {
	if passive = strings.HasPrefix(name, "&"); passive {
		name = name[1:]
	}
	if once = strings.HasPrefix(name, "~"); once {
		name = name[1:]
	}
	if capture = strings.HasPrefix(name, "!"); capture {
		name = name[1:]
	}
	return name, passive, once, capture
}

// scopeOf returns the error scope of a render context.
func scopeOf(context any) errors.Scope {
	if s, ok := context.(errors.Scope); ok && s != nil {
		return s
	}
	return nil
}

// EventsModule keeps target listeners in sync with Data.On.
func EventsModule(ops ElementOps) Module {
	update := func(old, vnode *VNode) {
		var oldOn, on map[string][]Handler
		if old.Data != nil {
			oldOn = old.Data.On
		}
		if vnode.Data != nil {
			on = vnode.Data.On
		}
		if len(oldOn) == 0 && len(on) == 0 {
			return
		}
		updateListeners(ops, old, vnode, on)
	}
	return Module{
		Name:   "events",
		Create: update,
		Update: update,
		Destroy: func(vnode *VNode) {
			if vnode.Data == nil || len(vnode.Data.On) == 0 {
				return
			}
			updateListeners(ops, vnode, emptyNode, nil)
		},
	}
}

func updateListeners(ops ElementOps, old, vnode *VNode, on map[string][]Handler) {
	el := vnode.Elm
	if el == nil {
		el = old.Elm
	}
	oldInvokers := old.invokers
	var invokers map[string]*Invoker
	if len(on) > 0 {
		invokers = make(map[string]*Invoker, len(on))
	}

	names := make([]string, 0, len(on))
	for name := range on {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fns := on[name]
		if len(fns) == 0 {
			continue
		}
		if inv, ok := oldInvokers[name]; ok {
			inv.fns = slices.Clone(fns)
			inv.scope = scopeOf(vnode.Context)
			invokers[name] = inv
			continue
		}
		event, passive, once, capture := ParseEventName(name)
		inv := &Invoker{
			Event:   event,
			Capture: capture,
			Once:    once,
			Passive: passive,
			fns:     slices.Clone(fns),
			scope:   scopeOf(vnode.Context),
		}
		if once {
			inv.remove = func() {
				ops.RemoveEventListener(el, event, inv)
				inv.remove = nil
			}
		}
		ops.AddEventListener(el, event, inv)
		invokers[name] = inv
	}

	oldNames := make([]string, 0, len(oldInvokers))
	for name := range oldInvokers {
		oldNames = append(oldNames, name)
	}
	sort.Strings(oldNames)
	for _, name := range oldNames {
		if _, keep := invokers[name]; keep {
			continue
		}
		inv := oldInvokers[name]
		ops.RemoveEventListener(el, inv.Event, inv)
	}

	if vnode != emptyNode {
		vnode.invokers = invokers
	}
}
