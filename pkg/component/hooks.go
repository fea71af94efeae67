package component

import (
	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// installComponentHooks returns hooks driving a child component through
// its placeholder. User hooks on the placeholder run after them.
func installComponentHooks(user *vdom.Hooks) *vdom.Hooks {
	h := &vdom.Hooks{}
	if user != nil {
		*h = *user
	}
	h.Init = chainInit(initComponent, h.Init)
	h.Prepatch = chainPrepatch(prepatchComponent, h.Prepatch)
	h.Insert = chainVnode(insertComponent, h.Insert)
	h.Destroy = chainVnode(destroyComponent, h.Destroy)
	return h
}

func chainInit(a, b func(*vdom.VNode, bool)) func(*vdom.VNode, bool) {
	if b == nil {
		return a
	}
	return func(v *vdom.VNode, hydrating bool) {
		a(v, hydrating)
		b(v, hydrating)
	}
}

func chainPrepatch(a, b func(old, v *vdom.VNode)) func(old, v *vdom.VNode) {
	if b == nil {
		return a
	}
	return func(old, v *vdom.VNode) {
		a(old, v)
		b(old, v)
	}
}

func chainVnode(a, b func(*vdom.VNode)) func(*vdom.VNode) {
	if b == nil {
		return a
	}
	return func(v *vdom.VNode) {
		a(v)
		b(v)
	}
}

func instanceOf(v *vdom.VNode) *Instance {
	vm, _ := v.ComponentInstance.(*Instance)
	return vm
}

func initComponent(vnode *vdom.VNode, hydrating bool) {
	if vm := instanceOf(vnode); vm != nil && !vm.isDestroyed && vnode.Data.KeepAlive {
		prepatchComponent(vnode, vnode)
		return
	}
	ctx, _ := vnode.Context.(*Instance)
	if ctx == nil {
		errors.WarnError(errors.New("C005").WithDetail("Component placeholder has no render context"), "tag", vnode.Tag)
		return
	}
	parent := ctx
	if ctx.env.active != nil {
		parent = ctx.env.active
	}
	child := newForVnode(vnode, parent)
	vnode.ComponentInstance = child
	if hydrating {
		child.mount(vnode.Elm, vdom.Hydrating())
	} else {
		child.mount(nil)
	}
}

func prepatchComponent(old, vnode *vdom.VNode) {
	vm := instanceOf(old)
	if vm == nil {
		return
	}
	vnode.ComponentInstance = vm
	co := vnode.ComponentOptions
	vm.updateChildComponent(co.PropsData, co.Listeners, vnode, co.Children)
}

func insertComponent(vnode *vdom.VNode) {
	vm := instanceOf(vnode)
	if vm == nil {
		return
	}
	if !vm.isMounted {
		vm.isMounted = true
		vm.CallHook(HookMounted)
	}
	if !vnode.Data.KeepAlive {
		return
	}
	if ctx, _ := vnode.Context.(*Instance); ctx != nil && ctx.isMounted {
		// Activated after the watcher pass of the current flush.
		vm.state = stateActive
		vm.env.scheduler.QueueActivated(vm)
		return
	}
	vm.activate(true)
}

func destroyComponent(vnode *vdom.VNode) {
	vm := instanceOf(vnode)
	if vm == nil || vm.isDestroyed {
		return
	}
	if vnode.Data.KeepAlive {
		vm.deactivate(true)
		return
	}
	vm.Destroy()
}
