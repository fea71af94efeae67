package component

import (
	"maps"
	"slices"

	"github.com/vango-dev/reactor/pkg/vdom"
)

// HookFunc is a lifecycle hook.
type HookFunc func(vm *Instance)

// ErrorCapturedFunc is offered errors raised in descendants. Returning
// false stops the error from propagating further.
type ErrorCapturedFunc func(vm *Instance, err error, origin *Instance, info string) bool

// RenderFunc produces the component's virtual tree.
type RenderFunc func(vm *Instance, h CreateElement) *vdom.VNode

// FunctionalFunc renders a functional component. It has no instance of
// its own; h creates nodes in the context of the parent.
type FunctionalFunc func(ctx *FunctionalContext, h CreateElement) *vdom.VNode

// Method is a component method.
type Method func(vm *Instance, args ...any) any

// PropDef declares a prop.
type PropDef struct {
	// Default is used when the parent does not pass the prop.
	// DefaultFunc wins over Default and is called per instance.
	Default     any
	DefaultFunc func(vm *Instance) any

	Required  bool
	Validator func(value any) bool
}

// ComputedDef declares a computed property. Set is optional.
type ComputedDef struct {
	Get func(vm *Instance) any
	Set func(vm *Instance, value any)
}

// WatchDef declares a watcher on a dotted path of the instance.
type WatchDef struct {
	Handler   func(vm *Instance, newVal, oldVal any)
	Deep      bool
	Immediate bool
	Sync      bool
}

// Options describe a component. Options are never mutated once passed to
// Extend, MergeOptions or an instance.
type Options struct {
	Name string

	Props    map[string]PropDef
	Data     func(vm *Instance) map[string]any
	Computed map[string]ComputedDef
	Watch    map[string][]WatchDef
	Methods  map[string]Method

	Render     RenderFunc
	Functional FunctionalFunc

	BeforeCreate  []HookFunc
	Created       []HookFunc
	BeforeMount   []HookFunc
	Mounted       []HookFunc
	BeforeUpdate  []HookFunc
	Updated       []HookFunc
	Activated     []HookFunc
	Deactivated   []HookFunc
	BeforeDestroy []HookFunc
	Destroyed     []HookFunc
	ErrorCaptured []ErrorCapturedFunc

	// Components maps names to *Options, *Ctor or *AsyncComponent.
	Components map[string]any

	// Directives maps names to *vdom.DirectiveDef or vdom.DirectiveHook.
	Directives map[string]any

	Mixins  []*Options
	Extends *Options

	// Abstract components render a single child and do not appear in
	// the parent chain.
	Abstract bool

	components *Registry[any]
	directives *Registry[*vdom.DirectiveDef]
}

// Hook names accepted by CallHook and Instance.On("hook:<name>").
const (
	HookBeforeCreate  = "beforeCreate"
	HookCreated       = "created"
	HookBeforeMount   = "beforeMount"
	HookMounted       = "mounted"
	HookBeforeUpdate  = "beforeUpdate"
	HookUpdated       = "updated"
	HookActivated     = "activated"
	HookDeactivated   = "deactivated"
	HookBeforeDestroy = "beforeDestroy"
	HookDestroyed     = "destroyed"
)

func (o *Options) hooks(name string) []HookFunc {
	switch name {
	case HookBeforeCreate:
		return o.BeforeCreate
	case HookCreated:
		return o.Created
	case HookBeforeMount:
		return o.BeforeMount
	case HookMounted:
		return o.Mounted
	case HookBeforeUpdate:
		return o.BeforeUpdate
	case HookUpdated:
		return o.Updated
	case HookActivated:
		return o.Activated
	case HookDeactivated:
		return o.Deactivated
	case HookBeforeDestroy:
		return o.BeforeDestroy
	case HookDestroyed:
		return o.Destroyed
	}
	return nil
}

// ComponentRegistry returns the chained component registry.
func (o *Options) ComponentRegistry() *Registry[any] {
	if o.components == nil {
		o.components = NewRegistry[any](nil)
		for name, def := range o.Components {
			o.components.Register(name, def)
		}
	}
	return o.components
}

// DirectiveRegistry returns the chained directive registry.
func (o *Options) DirectiveRegistry() *Registry[*vdom.DirectiveDef] {
	if o.directives == nil {
		o.directives = NewRegistry[*vdom.DirectiveDef](nil)
		for name, def := range o.Directives {
			o.directives.Register(name, normalizeDirective(def))
		}
	}
	return o.directives
}

// MergeOptions merges child into parent and returns a new Options.
// Neither argument is modified.
//
// Extends and Mixins of child are merged into parent first. Lifecycle
// hooks concatenate with parent hooks first, watch definitions
// concatenate per key, data functions merge recursively with child values
// winning, props, methods and computed are overridden per key, component
// and directive registries chain to the parent, and any other field set
// on child replaces the parent's.
func MergeOptions(parent, child *Options) *Options {
	if parent == nil {
		parent = &Options{}
	}
	if child == nil {
		child = &Options{}
	}
	if child.Extends != nil {
		parent = MergeOptions(parent, child.Extends)
	}
	for _, m := range child.Mixins {
		parent = MergeOptions(parent, m)
	}

	out := &Options{
		Name:       pick(child.Name, parent.Name),
		Props:      overrideMap(parent.Props, child.Props),
		Data:       mergeDataFn(parent.Data, child.Data),
		Computed:   overrideMap(parent.Computed, child.Computed),
		Watch:      mergeWatch(parent.Watch, child.Watch),
		Methods:    overrideMap(parent.Methods, child.Methods),
		Render:     child.Render,
		Functional: child.Functional,
		Abstract:   child.Abstract || parent.Abstract,

		BeforeCreate:  concat(parent.BeforeCreate, child.BeforeCreate),
		Created:       concat(parent.Created, child.Created),
		BeforeMount:   concat(parent.BeforeMount, child.BeforeMount),
		Mounted:       concat(parent.Mounted, child.Mounted),
		BeforeUpdate:  concat(parent.BeforeUpdate, child.BeforeUpdate),
		Updated:       concat(parent.Updated, child.Updated),
		Activated:     concat(parent.Activated, child.Activated),
		Deactivated:   concat(parent.Deactivated, child.Deactivated),
		BeforeDestroy: concat(parent.BeforeDestroy, child.BeforeDestroy),
		Destroyed:     concat(parent.Destroyed, child.Destroyed),
		ErrorCaptured: concat(parent.ErrorCaptured, child.ErrorCaptured),

		Components: maps.Clone(child.Components),
		Directives: maps.Clone(child.Directives),
	}
	if out.Render == nil {
		out.Render = parent.Render
	}
	if out.Functional == nil {
		out.Functional = parent.Functional
	}

	out.components = NewRegistry(parent.ComponentRegistry())
	for name, def := range child.Components {
		out.components.Register(name, def)
	}
	out.directives = NewRegistry(parent.DirectiveRegistry())
	for name, def := range child.Directives {
		out.directives.Register(name, normalizeDirective(def))
	}
	return out
}

func pick(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func concat[T any](parent, child []T) []T {
	if len(parent) == 0 {
		return slices.Clone(child)
	}
	if len(child) == 0 {
		return slices.Clone(parent)
	}
	return append(slices.Clone(parent), child...)
}

func overrideMap[V any](parent, child map[string]V) map[string]V {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}
	out := make(map[string]V, len(parent)+len(child))
	maps.Copy(out, parent)
	maps.Copy(out, child)
	return out
}

func mergeWatch(parent, child map[string][]WatchDef) map[string][]WatchDef {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}
	out := make(map[string][]WatchDef, len(parent)+len(child))
	for k, v := range parent {
		out[k] = slices.Clone(v)
	}
	for k, v := range child {
		out[k] = append(out[k], v...)
	}
	return out
}

func mergeDataFn(parent, child func(vm *Instance) map[string]any) func(vm *Instance) map[string]any {
	if parent == nil {
		return child
	}
	if child == nil {
		return parent
	}
	return func(vm *Instance) map[string]any {
		return mergeData(child(vm), parent(vm))
	}
}

// mergeData copies keys of from missing in to, recursing into nested
// maps present on both sides.
func mergeData(to, from map[string]any) map[string]any {
	if to == nil {
		to = make(map[string]any, len(from))
	}
	for k, fv := range from {
		tv, ok := to[k]
		if !ok {
			to[k] = fv
			continue
		}
		tm, tIsMap := tv.(map[string]any)
		fm, fIsMap := fv.(map[string]any)
		if tIsMap && fIsMap {
			to[k] = mergeData(tm, fm)
		}
	}
	return to
}

func normalizeDirective(def any) *vdom.DirectiveDef {
	switch d := def.(type) {
	case *vdom.DirectiveDef:
		return d
	case vdom.DirectiveHook:
		return &vdom.DirectiveDef{Bind: d, Update: d}
	case func(el vdom.Node, binding *vdom.Directive, vnode, old *vdom.VNode):
		return &vdom.DirectiveDef{Bind: d, Update: d}
	}
	return nil
}
