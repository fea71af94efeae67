package component

import (
	"slices"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Mount renders the instance and patches the result over el, replacing
// it. A nil el renders a detached tree; El returns its root afterwards.
func (vm *Instance) Mount(el vdom.Node) *Instance {
	vm.mount(el)
	return vm
}

// MountInto renders the instance and appends the result to parent.
func (vm *Instance) MountInto(parent vdom.Node) *Instance {
	vm.mount(nil, vdom.Into(parent, nil))
	return vm
}

// Hydrate mounts over server-rendered markup rooted at el, adopting the
// existing nodes where they match the render.
func (vm *Instance) Hydrate(el vdom.Node) *Instance {
	vm.mount(el, vdom.Hydrating())
	return vm
}

func (vm *Instance) mount(el vdom.Node, first ...vdom.PatchOption) {
	if vm.env.patcher == nil {
		errors.WarnError(errors.New("C005").WithDetail("Cannot mount an instance without a rendering target"), "trace", vm.Trace())
		return
	}
	if vm.opts.Render == nil {
		errors.WarnError(errors.New("C005").WithDetail("Failed to mount component: render function not defined"), "trace", vm.Trace())
	}
	vm.el = el
	vm.CallHook(HookBeforeMount)

	vm.renderWatcher = reactive.NewWatcher(vm, func() any {
		opts := first
		first = nil
		vm.update(vm.render(), opts...)
		return nil
	}, nil,
		reactive.Before(func() {
			if vm.isMounted && !vm.isDestroyed {
				vm.CallHook(HookBeforeUpdate)
			}
		}),
		reactive.OnUpdated(func() {
			if vm.isMounted && !vm.isDestroyed {
				vm.CallHook(HookUpdated)
			}
		}),
		reactive.WithScheduler(vm.env.scheduler),
		reactive.Expression("render "+vm.formatName()),
	)

	// Child components are mounted by their placeholder's insert hook.
	if vm.parentVnode == nil {
		vm.isMounted = true
		vm.CallHook(HookMounted)
	}
}

// update patches vnode against the previous render.
func (vm *Instance) update(vnode *vdom.VNode, opts ...vdom.PatchOption) {
	prev := vm.env.active
	vm.env.active = vm
	defer func() { vm.env.active = prev }()

	var old any = vm.el
	if vm.vnode != nil {
		old = vm.vnode
	}
	vm.vnode = vnode
	vm.el = vm.env.patcher.Patch(old, vnode, opts...)

	// A component whose root is another component shares its element.
	if p := vm.parent; p != nil && vm.parentVnode != nil && p.vnode == vm.parentVnode {
		p.el = vm.el
	}
}

// render runs the render function. A panicking render is reported and the
// previous tree is kept.
func (vm *Instance) render() (vnode *vdom.VNode) {
	defer func() {
		if r := recover(); r != nil {
			e := errors.New("C001").Wrap(errors.FromPanic(r)).WithComponent(vm.Trace())
			errors.Handle(e, vm, "render")
			vnode = vm.vnode
			if vnode == nil {
				vnode = vdom.Empty()
			}
		}
		vnode.Parent = vm.parentVnode
	}()
	if vm.opts.Render != nil {
		vnode = vm.opts.Render(vm, vm.createElement)
	}
	if vnode == nil {
		vnode = vdom.Empty()
	}
	vm.claim(vnode)
	return vnode
}

// claim assigns vm as the render context of nodes built without one and
// resolves their directives. Nodes owned by another context (slot content)
// are left alone.
func (vm *Instance) claim(v *vdom.VNode) {
	if v == nil {
		return
	}
	switch v.Context {
	case nil:
		v.Context = vm
		vm.resolveDirectives(v)
	case any(vm):
	default:
		return
	}
	for _, ch := range v.Children {
		vm.claim(ch)
	}
	if co := v.ComponentOptions; co != nil {
		for _, ch := range co.Children {
			vm.claim(ch)
		}
	}
}

// ForceUpdate re-renders the instance on the next flush. Child components
// re-render only when their inputs changed.
func (vm *Instance) ForceUpdate() {
	if vm.renderWatcher != nil {
		vm.renderWatcher.Update()
	}
}

// Destroy tears the instance down: watchers stop, the rendered tree is
// destroyed depth first and every listener is removed. The realized nodes
// of a root instance stay where they are.
func (vm *Instance) Destroy() {
	if vm.isBeingDestroyed {
		return
	}
	vm.CallHook(HookBeforeDestroy)
	vm.isBeingDestroyed = true

	if p := vm.parent; p != nil && !p.isBeingDestroyed && !vm.opts.Abstract {
		if i := slices.Index(p.children, vm); i >= 0 {
			p.children = slices.Delete(p.children, i, i+1)
		}
	}
	if vm.renderWatcher != nil {
		vm.renderWatcher.Teardown()
	}
	for _, w := range vm.watchers {
		w.Teardown()
	}
	for _, c := range vm.computed {
		c.Watcher().Teardown()
	}
	if vm.data != nil {
		if ob := vm.data.Observer(); ob != nil {
			ob.ReleaseRoot()
		}
	}

	vm.isDestroyed = true
	if vm.vnode != nil && vm.env.patcher != nil {
		vm.env.patcher.Patch(vm.vnode, nil)
	}
	vm.CallHook(HookDestroyed)
	vm.Off()
	if vm.parentVnode != nil {
		vm.parentVnode.Parent = nil
	}
}

// updateChildComponent applies a parent re-render to a mounted child.
func (vm *Instance) updateChildComponent(propsData map[string]any, listeners map[string][]vdom.Handler, parentVnode *vdom.VNode, renderChildren []*vdom.VNode) {
	hasChildren := len(renderChildren) > 0 || len(vm.renderChildren) > 0

	vm.parentVnode = parentVnode
	if vm.vnode != nil {
		vm.vnode.Parent = parentVnode
	}
	vm.renderChildren = renderChildren

	if len(vm.opts.Props) > 0 {
		reactive.ToggleObserving(false)
		vm.updatingProps = true
		for _, key := range sortedNames(vm.opts.Props) {
			vm.props.Set(key, vm.resolveProp(vm.opts.Props[key], key, propsData))
		}
		vm.updatingProps = false
		reactive.ToggleObserving(true)
	}

	vm.updateListeners(listeners)

	if hasChildren {
		vm.slots = resolveSlots(renderChildren, vm.renderContext())
		vm.ForceUpdate()
	}
}

// Activate implements reactive.Activatable. The scheduler calls it for
// kept-alive instances re-inserted during a flush.
func (vm *Instance) Activate() {
	vm.state = stateInactive
	vm.activate(true)
}

func (vm *Instance) activate(direct bool) {
	if direct {
		vm.directInactive = false
		if vm.inInactiveTree() {
			return
		}
	} else if vm.directInactive {
		return
	}
	if vm.state == stateActive {
		return
	}
	vm.state = stateActive
	for _, c := range vm.children {
		c.activate(false)
	}
	vm.CallHook(HookActivated)
}

func (vm *Instance) deactivate(direct bool) {
	if direct {
		vm.directInactive = true
		if vm.inInactiveTree() {
			return
		}
	}
	if vm.state == stateInactive {
		return
	}
	vm.state = stateInactive
	for _, c := range vm.children {
		c.deactivate(false)
	}
	vm.CallHook(HookDeactivated)
}

func (vm *Instance) inInactiveTree() bool {
	for p := vm.parent; p != nil; p = p.parent {
		if p.state == stateInactive {
			return true
		}
	}
	return false
}
