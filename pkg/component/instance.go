package component

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

var nextUID atomic.Uint64

var (
	_ errors.Scope           = (*Instance)(nil)
	_ errors.Tracer          = (*Instance)(nil)
	_ vdom.ComponentInstance = (*Instance)(nil)
	_ vdom.RefOwner          = (*Instance)(nil)
	_ reactive.Getter        = (*Instance)(nil)
	_ reactive.Activatable   = (*Instance)(nil)
	_ vdom.AsyncFactory      = (*AsyncComponent)(nil)
)

// env is shared by every instance of one tree.
type env struct {
	patcher   *vdom.Patcher
	scheduler *reactive.Scheduler
	post      func(fn func())
	logger    *slog.Logger

	// active is the instance whose render is being patched.
	active *Instance
}

type activeState uint8

const (
	stateUnknown activeState = iota
	stateActive
	stateInactive
)

// Instance is a live component: reactive state, a render watcher and the
// virtual tree it last rendered.
//
// An Instance belongs to the goroutine that drives its scheduler. It is
// not safe for concurrent use; cross-goroutine work goes through the
// tree's Post function.
type Instance struct {
	uid  uint64
	ctor *Ctor
	opts *Options
	env  *env

	parent   *Instance
	root     *Instance
	children []*Instance
	refs     map[string]any

	props    *reactive.Object
	data     *reactive.Object
	computed map[string]*reactive.Computed[any]

	renderWatcher *reactive.Watcher
	watchers      []*reactive.Watcher

	el          vdom.Node
	vnode       *vdom.VNode
	parentVnode *vdom.VNode

	renderChildren  []*vdom.VNode
	slots           map[string][]*vdom.VNode
	parentListeners map[string][]vdom.Handler
	listenerOff     map[string]func()

	events       map[string][]*listener
	hasHookEvent bool

	isMounted        bool
	isDestroyed      bool
	isBeingDestroyed bool
	state            activeState
	directInactive   bool
	updatingProps    bool

	keepAlive *keepAliveCache
}

// InstanceOptions configure an instance created with New.
type InstanceOptions struct {
	// Ops is the rendering target. Required for root instances that are
	// mounted; children inherit their parent's.
	Ops vdom.NodeOps

	// PatcherOptions are passed to the patcher built for Ops.
	PatcherOptions []vdom.PatcherOption

	// Scheduler queues render and user watchers. Defaults to
	// reactive.Default().
	Scheduler *reactive.Scheduler

	// Post runs fn on the goroutine that owns the tree. Async components
	// resolve through it. Defaults to calling fn directly.
	Post func(fn func())

	Logger *slog.Logger

	// Parent makes the new instance a child of Parent, sharing its tree.
	Parent *Instance

	// PropsData holds prop values.
	PropsData map[string]any

	// Options are merged into the constructor's options for this
	// instance only.
	Options *Options
}

// New creates an instance of ctor and runs it up to the created hook. The
// instance renders once Mount is called.
func New(ctor *Ctor, io InstanceOptions) *Instance {
	if ctor == nil {
		ctor = Base
	}
	opts := ctor.resolveOptions()
	if io.Options != nil {
		opts = MergeOptions(opts, io.Options)
	}

	var e *env
	if io.Parent != nil {
		e = io.Parent.env
	} else {
		e = newEnv(io)
	}

	vm := &Instance{ctor: ctor, opts: opts, env: e}
	vm.init(io.Parent, io.PropsData, nil, nil, nil)
	return vm
}

// NewApp creates a root instance from options.
func NewApp(opts *Options, io InstanceOptions) *Instance {
	io.Options = MergeOptions(io.Options, opts)
	return New(Base, io)
}

func newEnv(io InstanceOptions) *env {
	e := &env{
		scheduler: io.Scheduler,
		post:      io.Post,
		logger:    io.Logger,
	}
	if e.scheduler == nil {
		e.scheduler = reactive.Default()
	}
	if e.logger == nil {
		e.logger = slog.Default().With("component", "instance")
	}
	if e.post == nil {
		e.post = func(fn func()) { fn() }
	}
	if io.Ops != nil {
		e.patcher = vdom.NewPatcher(io.Ops, io.PatcherOptions...)
	}
	return e
}

// newForVnode creates the child instance a component placeholder stands
// for.
func newForVnode(vnode *vdom.VNode, parent *Instance) *Instance {
	co := vnode.ComponentOptions
	ctor := co.Ctor.(*Ctor)
	vm := &Instance{ctor: ctor, opts: ctor.resolveOptions(), env: parent.env}
	vm.init(parent, co.PropsData, co.Listeners, vnode, co.Children)
	return vm
}

func (vm *Instance) init(parent *Instance, propsData map[string]any, listeners map[string][]vdom.Handler, parentVnode *vdom.VNode, renderChildren []*vdom.VNode) {
	vm.uid = nextUID.Add(1)
	vm.parentVnode = parentVnode
	vm.renderChildren = renderChildren

	vm.initLifecycle(parent)
	vm.initEvents(listeners)
	vm.slots = resolveSlots(renderChildren, vm.renderContext())
	vm.CallHook(HookBeforeCreate)
	vm.initState(propsData)
	vm.CallHook(HookCreated)
}

func (vm *Instance) renderContext() *Instance {
	if vm.parentVnode == nil {
		return nil
	}
	ctx, _ := vm.parentVnode.Context.(*Instance)
	return ctx
}

func (vm *Instance) initLifecycle(parent *Instance) {
	if parent != nil && !vm.opts.Abstract {
		for parent.opts.Abstract && parent.parent != nil {
			parent = parent.parent
		}
		parent.children = append(parent.children, vm)
	}
	vm.parent = parent
	vm.root = vm
	if parent != nil {
		vm.root = parent.root
	}
	vm.refs = make(map[string]any)
}

// UID returns the instance id. Parents always have smaller ids than their
// children.
func (vm *Instance) UID() uint64 {
	return vm.uid
}

// Name returns the component name, or "" for anonymous components.
func (vm *Instance) Name() string {
	if vm.opts.Name != "" {
		return vm.opts.Name
	}
	if vm.parentVnode != nil && vm.parentVnode.ComponentOptions != nil {
		return vm.parentVnode.ComponentOptions.Tag
	}
	return ""
}

// Options returns the resolved options of the instance.
func (vm *Instance) Options() *Options {
	return vm.opts
}

// Parent returns the parent instance, skipping abstract ones.
func (vm *Instance) Parent() *Instance {
	return vm.parent
}

// Root returns the root of the instance tree.
func (vm *Instance) Root() *Instance {
	return vm.root
}

// Children returns the direct child instances.
func (vm *Instance) Children() []*Instance {
	return slices.Clone(vm.children)
}

// El returns the realized root node.
func (vm *Instance) El() vdom.Node {
	return vm.el
}

// VNode returns the root of the last render.
func (vm *Instance) VNode() *vdom.VNode {
	return vm.vnode
}

// Placeholder returns the component vnode the instance stands for in its
// parent's tree, or nil for roots.
func (vm *Instance) Placeholder() *vdom.VNode {
	return vm.parentVnode
}

// Scheduler returns the scheduler of the instance tree.
func (vm *Instance) Scheduler() *reactive.Scheduler {
	return vm.env.scheduler
}

// IsMounted reports whether the mounted hook has run.
func (vm *Instance) IsMounted() bool {
	return vm.isMounted
}

// IsDestroyed reports whether Destroy completed.
func (vm *Instance) IsDestroyed() bool {
	return vm.isDestroyed
}

// IsInactive reports whether the instance is deactivated inside a
// keep-alive cache.
func (vm *Instance) IsInactive() bool {
	return vm.state == stateInactive
}

// NextTick runs fn after the next flush of the instance's scheduler.
func (vm *Instance) NextTick(fn func()) {
	vm.env.scheduler.NextTick(fn)
}

// Post runs fn on the goroutine that owns the tree.
func (vm *Instance) Post(fn func()) {
	vm.env.post(fn)
}

// Slot returns the vnodes passed to the named slot.
func (vm *Instance) Slot(name string) []*vdom.VNode {
	return vm.slots[name]
}

// Slots returns every resolved slot.
func (vm *Instance) Slots() map[string][]*vdom.VNode {
	return vm.slots
}

// Ref returns the element or instance registered under name. Refs
// registered in a loop are []any.
func (vm *Instance) Ref(name string) any {
	return vm.refs[name]
}

// Refs returns a copy of the registered refs.
func (vm *Instance) Refs() map[string]any {
	out := make(map[string]any, len(vm.refs))
	for k, v := range vm.refs {
		out[k] = v
	}
	return out
}

// SetRef implements vdom.RefOwner.
func (vm *Instance) SetRef(name string, value any, inFor bool) {
	if !inFor {
		vm.refs[name] = value
		return
	}
	list, _ := vm.refs[name].([]any)
	if !slices.Contains(list, value) {
		vm.refs[name] = append(list, value)
	}
}

// RemoveRef implements vdom.RefOwner.
func (vm *Instance) RemoveRef(name string, value any, inFor bool) {
	if !inFor {
		if vm.refs[name] == value {
			delete(vm.refs, name)
		}
		return
	}
	list, _ := vm.refs[name].([]any)
	if i := slices.Index(list, value); i >= 0 {
		vm.refs[name] = slices.Delete(slices.Clone(list), i, i+1)
	}
}

// RootElm implements vdom.ComponentInstance.
func (vm *Instance) RootElm() vdom.Node {
	return vm.el
}

// RenderedVNode implements vdom.ComponentInstance.
func (vm *Instance) RenderedVNode() *vdom.VNode {
	return vm.vnode
}

// ParentScope implements errors.Scope.
func (vm *Instance) ParentScope() errors.Scope {
	if vm.parent == nil {
		return nil
	}
	return vm.parent
}

// CaptureError implements errors.Scope by running the ErrorCaptured
// hooks. A hook returning false captures the error. A panicking hook is
// reported to the global handler and does not stop propagation.
func (vm *Instance) CaptureError(err error, origin errors.Scope, info string) bool {
	from, _ := origin.(*Instance)
	for _, hook := range vm.opts.ErrorCaptured {
		if vm.runErrorCaptured(hook, err, from, info) {
			return true
		}
	}
	return false
}

func (vm *Instance) runErrorCaptured(hook ErrorCapturedFunc, err error, origin *Instance, info string) (captured bool) {
	defer func() {
		if r := recover(); r != nil {
			captured = false
			e := errors.New("C003").Wrap(errors.FromPanic(r))
			errors.HandleGlobal(e, vm, "errorCaptured hook")
		}
	}()
	return !hook(vm, err, origin, info)
}

// Trace implements errors.Tracer with the component chain from the root.
func (vm *Instance) Trace() string {
	var names []string
	for cur := vm; cur != nil; cur = cur.parent {
		names = append(names, cur.formatName())
	}
	slices.Reverse(names)
	return strings.Join(names, " > ")
}

func (vm *Instance) formatName() string {
	if vm.parent == nil {
		return "<Root>"
	}
	if n := vm.Name(); n != "" {
		return "<" + classify(n) + ">"
	}
	return "<Anonymous>"
}

// classify turns "my-comp" into "MyComp".
func classify(name string) string {
	return capitalize(camelize(name))
}

// String implements fmt.Stringer.
func (vm *Instance) String() string {
	return fmt.Sprintf("%s#%d", vm.formatName(), vm.uid)
}
