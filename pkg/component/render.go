package component

import (
	"fmt"
	"strings"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// CreateElement builds vnodes inside a render function. tag is an element
// name, the name of a registered component, *Options, *Ctor or
// *AsyncComponent; a nil or empty tag renders nothing. args are the ones
// vdom.El accepts. Component props are passed with vdom.Props or
// vdom.Prop, or as attributes named after a declared prop.
type CreateElement func(tag any, args ...any) *vdom.VNode

func (vm *Instance) createElement(tag any, args ...any) *vdom.VNode {
	switch t := tag.(type) {
	case nil:
		return vdom.Empty()
	case string:
		if t == "" {
			return vdom.Empty()
		}
		if vdom.IsReservedTag(t) {
			return vm.element(t, args)
		}
		if def, ok := vm.opts.ComponentRegistry().Lookup(t); ok {
			return vm.createComponent(def, t, args)
		}
		// Unknown tags render as plain elements; the patcher warns.
		return vm.element(t, args)
	default:
		return vm.createComponent(tag, "", args)
	}
}

func (vm *Instance) element(tag string, args []any) *vdom.VNode {
	v := vdom.El(tag, args...)
	v.Context = vm
	vm.resolveDirectives(v)
	return v
}

func (vm *Instance) resolveDirectives(v *vdom.VNode) {
	if v.Data == nil {
		return
	}
	for _, d := range v.Data.Directives {
		if d == nil || d.Def != nil {
			continue
		}
		def, ok := vm.opts.DirectiveRegistry().Lookup(d.Name)
		if !ok || def == nil {
			errors.WarnError(errors.New("C005").WithDetail("Failed to resolve directive: "+d.Name), "directive", d.Name, "trace", vm.Trace())
			continue
		}
		d.Def = def
	}
}

// createComponent builds the placeholder vnode for a child component.
func (vm *Instance) createComponent(def any, name string, args []any) *vdom.VNode {
	base := vdom.El("", args...)
	data := base.Data
	if data == nil {
		data = &vdom.Data{}
	}

	var ctor *Ctor
	var factory *AsyncComponent
	switch d := def.(type) {
	case *Ctor:
		ctor = d
	case *Options:
		ctor = Base.Extend(d)
	case *AsyncComponent:
		factory = d
		ctor = d.resolveFor(vm)
		if ctor == nil {
			p := vdom.Empty()
			p.AsyncFactory = d
			p.Context = vm
			return p
		}
	default:
		errors.WarnError(errors.New("C005").WithDetail(fmt.Sprintf("Invalid component definition: %T", def)), "trace", vm.Trace())
		return vdom.Empty()
	}

	opts := ctor.resolveOptions()
	propsData := extractProps(opts, data)

	if opts.Functional != nil {
		return vm.createFunctional(opts, propsData, data, base.Children)
	}

	// On carries component events; native listeners bind to the root.
	listeners := data.On
	data.On = data.NativeOn
	data.NativeOn = nil

	if opts.Abstract {
		data = &vdom.Data{Slot: data.Slot}
	}
	data.Hook = installComponentHooks(data.Hook)

	if name == "" {
		name = opts.Name
	}
	tag := fmt.Sprintf("component-%d", ctor.cid)
	if name != "" {
		tag += "-" + name
	}
	v := &vdom.VNode{
		Kind:    vdom.KindComponent,
		Tag:     tag,
		Key:     base.Key,
		Data:    data,
		Context: vm,
		ComponentOptions: &vdom.ComponentOptions{
			Ctor:      ctor,
			Tag:       name,
			PropsData: propsData,
			Listeners: listeners,
			Children:  base.Children,
		},
	}
	if factory != nil {
		v.AsyncFactory = factory
	}
	return v
}

// extractProps collects the declared props from data. Attributes used as
// props are removed so they do not render on the root element.
func extractProps(opts *Options, data *vdom.Data) map[string]any {
	if len(opts.Props) == 0 {
		return nil
	}
	out := make(map[string]any, len(opts.Props))
	for key := range opts.Props {
		alt := hyphenate(key)
		switch {
		case has(data.Props, key):
			out[key] = data.Props[key]
		case has(data.Props, alt):
			out[key] = data.Props[alt]
		case has(data.Attrs, key):
			out[key] = data.Attrs[key]
			delete(data.Attrs, key)
		case has(data.Attrs, alt):
			out[key] = data.Attrs[alt]
			delete(data.Attrs, alt)
		}
	}
	return out
}

func has(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

// FunctionalContext is what a functional component renders from.
type FunctionalContext struct {
	Props     map[string]any
	Children  []*vdom.VNode
	Data      *vdom.Data
	Listeners map[string][]vdom.Handler

	// Parent is the instance whose render contains the component.
	Parent *Instance

	slots map[string][]*vdom.VNode
}

// Slots resolves Children into named slots.
func (c *FunctionalContext) Slots() map[string][]*vdom.VNode {
	if c.slots == nil {
		c.slots = resolveSlots(c.Children, c.Parent)
	}
	return c.slots
}

// createFunctional renders a functional component in place. It has no
// instance; its nodes belong to vm.
func (vm *Instance) createFunctional(opts *Options, propsData map[string]any, data *vdom.Data, children []*vdom.VNode) *vdom.VNode {
	props := make(map[string]any)
	if len(opts.Props) > 0 {
		for _, key := range sortedNames(opts.Props) {
			props[key] = vm.resolveProp(opts.Props[key], key, propsData)
		}
	} else {
		for k, v := range data.Attrs {
			props[camelize(k)] = v
		}
		for k, v := range data.Props {
			props[camelize(k)] = v
		}
	}
	ctx := &FunctionalContext{
		Props:     props,
		Children:  children,
		Data:      data,
		Listeners: data.On,
		Parent:    vm,
	}

	var out *vdom.VNode
	vm.guard("C001", "functional render", func() {
		out = opts.Functional(ctx, vm.createElement)
	})
	if out == nil {
		return vdom.Empty()
	}
	clone := vdom.CloneVNode(out)
	if data.Slot != "" {
		d := vdom.Data{}
		if clone.Data != nil {
			d = *clone.Data
		}
		d.Slot = data.Slot
		clone.Data = &d
	}
	return clone
}

// resolveSlots groups children by slot name. Only children rendered by ctx
// may target a named slot; the rest go to "default". Slots holding only
// whitespace or comments are dropped.
func resolveSlots(children []*vdom.VNode, ctx *Instance) map[string][]*vdom.VNode {
	if len(children) == 0 {
		return nil
	}
	slots := make(map[string][]*vdom.VNode)
	for _, child := range children {
		if child == nil {
			continue
		}
		name := "default"
		if owner, _ := child.Context.(*Instance); owner == ctx && child.Data != nil && child.Data.Slot != "" {
			name = child.Data.Slot
		}
		slots[name] = append(slots[name], child)
	}
	for name, nodes := range slots {
		if allWhitespace(nodes) {
			delete(slots, name)
		}
	}
	return slots
}

func allWhitespace(nodes []*vdom.VNode) bool {
	for _, n := range nodes {
		switch {
		case n.IsComment() && n.AsyncFactory == nil:
		case n.Kind == vdom.KindText && strings.TrimSpace(n.Text) == "":
		default:
			return false
		}
	}
	return true
}

// firstComponentChild returns the first component placeholder (or async
// placeholder) in children.
func firstComponentChild(children []*vdom.VNode) *vdom.VNode {
	for _, c := range children {
		if c != nil && (c.ComponentOptions != nil || (c.IsComment() && c.AsyncFactory != nil)) {
			return c
		}
	}
	return nil
}
