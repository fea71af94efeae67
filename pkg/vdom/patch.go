package vdom

import (
	"log/slog"
	"strings"
	"time"

	"github.com/vango-dev/reactor/internal/errors"
)

// SSRAttr marks the root element of server-rendered markup. Patching onto
// an element carrying it hydrates instead of replacing.
const SSRAttr = "data-server-rendered"

// PatchStats counts the structural work of one Patch call.
type PatchStats struct {
	Created int // nodes created
	Removed int // nodes removed
	Moved   int // nodes moved by the keyed diff
	Patched int // vnode pairs patched in place
}

// PatchObserver receives the stats of every Patch call.
type PatchObserver interface {
	PatchFinished(stats PatchStats, elapsed time.Duration)
}

// Patcher reconciles virtual trees against a rendering target.
// One Patcher may serve any number of component instances; each Patch
// call keeps its own state, so patches nested through component hooks do
// not interfere.
type Patcher struct {
	ops      NodeOps
	elOps    ElementOps
	modules  []Module
	observer PatchObserver
	logger   *slog.Logger

	create   []func(old, vnode *VNode)
	activate []func(old, vnode *VNode)
	update   []func(old, vnode *VNode)
	remove   []func(vnode *VNode, rm func())
	destroy  []func(vnode *VNode)
}

// PatcherOption configures a Patcher.
type PatcherOption func(*Patcher)

// WithModules replaces the default modules.
func WithModules(mods ...Module) PatcherOption {
	return func(p *Patcher) { p.modules = mods }
}

// AddModules appends mods to the modules configured so far.
func AddModules(mods ...Module) PatcherOption {
	return func(p *Patcher) { p.modules = append(p.modules[:len(p.modules):len(p.modules)], mods...) }
}

// WithPatchObserver installs a stats observer.
func WithPatchObserver(o PatchObserver) PatcherOption {
	return func(p *Patcher) { p.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) PatcherOption {
	return func(p *Patcher) { p.logger = l }
}

// NewPatcher creates a patcher for ops.
func NewPatcher(ops NodeOps, opts ...PatcherOption) *Patcher {
	p := &Patcher{
		ops:    ops,
		logger: slog.Default().With("component", "patch"),
	}
	p.elOps, _ = ops.(ElementOps)
	p.modules = DefaultModules(ops)
	for _, opt := range opts {
		opt(p)
	}
	for _, m := range p.modules {
		if m.Create != nil {
			p.create = append(p.create, m.Create)
		}
		if m.Activate != nil {
			p.activate = append(p.activate, m.Activate)
		}
		if m.Update != nil {
			p.update = append(p.update, m.Update)
		}
		if m.Remove != nil {
			p.remove = append(p.remove, m.Remove)
		}
		if m.Destroy != nil {
			p.destroy = append(p.destroy, m.Destroy)
		}
	}
	return p
}

// Ops returns the rendering target.
func (p *Patcher) Ops() NodeOps {
	return p.ops
}

// PatchOption configures one Patch call.
type PatchOption func(*patchConfig)

type patchConfig struct {
	hydrating  bool
	removeOnly bool
	parent     Node
	ref        Node
}

// Hydrating adopts existing target nodes instead of creating new ones
// when old is a realized node.
func Hydrating() PatchOption {
	return func(c *patchConfig) { c.hydrating = true }
}

// RemoveOnly forbids moving nodes during the keyed diff.
func RemoveOnly() PatchOption {
	return func(c *patchConfig) { c.removeOnly = true }
}

// Into inserts a newly created tree into parent before ref (appending
// when ref is nil). It only applies when old is nil.
func Into(parent, ref Node) PatchOption {
	return func(c *patchConfig) {
		c.parent = parent
		c.ref = ref
	}
}

// patchRun is the state of one Patch call.
type patchRun struct {
	*Patcher
	queue []*VNode
	stats PatchStats
}

// Patch reconciles vnode against old and returns the realized root.
//
// old may be nil (create vnode), a *VNode (patch in place when SameVNode,
// replace otherwise) or a realized Node (hydrate it, or replace it when it
// does not match). A nil vnode destroys old.
func (p *Patcher) Patch(old any, vnode *VNode, opts ...PatchOption) Node {
	var cfg patchConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var oldVnode *VNode
	var realNode Node
	switch o := old.(type) {
	case nil:
	case *VNode:
		oldVnode = o
	default:
		realNode = o
	}

	if vnode == nil {
		if oldVnode != nil {
			p.invokeDestroyHook(oldVnode)
		}
		return nil
	}

	start := time.Now()
	r := &patchRun{Patcher: p}
	defer func() {
		if p.observer != nil {
			p.observer.PatchFinished(r.stats, time.Since(start))
		}
	}()

	initial := false
	if oldVnode == nil && realNode == nil {
		initial = true
		r.createElm(vnode, cfg.parent, cfg.ref, false, nil, 0)
		r.invokeInsertHook(vnode, initial)
		return vnode.Elm
	}

	if realNode == nil && SameVNode(oldVnode, vnode) {
		r.patchVnode(oldVnode, vnode, nil, 0, cfg.removeOnly)
		r.invokeInsertHook(vnode, initial)
		return vnode.Elm
	}

	if realNode != nil {
		hydrating := cfg.hydrating
		if p.elOps != nil && p.ops.NodeType(realNode) == ElementNode && p.elOps.HasAttribute(realNode, SSRAttr) {
			p.elOps.RemoveAttribute(realNode, SSRAttr)
			hydrating = true
		}
		if hydrating {
			if r.hydrate(realNode, vnode) {
				r.invokeInsertHook(vnode, true)
				return realNode
			}
			errors.Warn("V002")
		}
		oldVnode = p.emptyNodeAt(realNode)
	}

	oldElm := oldVnode.Elm
	parentElm := p.ops.ParentNode(oldElm)
	var refElm Node
	if oldElm != nil {
		refElm = p.ops.NextSibling(oldElm)
	}
	r.createElm(vnode, parentElm, refElm, false, nil, 0)

	// The new root replaces the old one inside every component placeholder
	// it stands for.
	if vnode.Parent != nil {
		patchable := p.isPatchable(vnode)
		for ancestor := vnode.Parent; ancestor != nil; ancestor = ancestor.Parent {
			for _, d := range p.destroy {
				d(ancestor)
			}
			ancestor.Elm = vnode.Elm
			if patchable {
				for _, c := range p.create {
					c(emptyNode, ancestor)
				}
			} else {
				registerRef(ancestor, false)
			}
		}
	}

	if parentElm != nil {
		r.removeVnodes([]*VNode{oldVnode}, 0, 0)
	} else if oldVnode.hasTag() {
		p.invokeDestroyHook(oldVnode)
	}

	r.invokeInsertHook(vnode, initial)
	return vnode.Elm
}

func (p *Patcher) emptyNodeAt(elm Node) *VNode {
	return &VNode{
		Kind: KindElement,
		Tag:  strings.ToLower(p.ops.TagName(elm)),
		Data: &Data{},
		Elm:  elm,
	}
}

// isPatchable reports whether the node a vnode stands for is an element.
func (p *Patcher) isPatchable(vnode *VNode) bool {
	for vnode.ComponentInstance != nil {
		vnode = vnode.ComponentInstance.RenderedVNode()
		if vnode == nil {
			return false
		}
	}
	return vnode.hasTag()
}

func (r *patchRun) createElm(vnode *VNode, parentElm, refElm Node, nested bool, ownerArray []*VNode, index int) {
	if vnode.Elm != nil && ownerArray != nil {
		// Already realized elsewhere, so work on a copy.
		vnode = CloneVNode(vnode)
		ownerArray[index] = vnode
	}

	vnode.IsRootInsert = !nested
	if r.createComponent(vnode, parentElm, refElm) {
		return
	}

	switch {
	case vnode.hasTag():
		if vnode.Kind == KindElement && isUnknownElement(vnode.Tag) {
			errors.Warn("V003", "tag", vnode.Tag)
		}
		vnode.Elm = r.ops.CreateElement(vnode.Tag, vnode)
		r.createChildren(vnode, vnode.Children)
		if vnode.Data != nil {
			r.invokeCreateHooks(vnode)
		}
	case vnode.Kind == KindComment:
		vnode.Elm = r.ops.CreateComment(vnode.Text)
	default:
		vnode.Elm = r.ops.CreateTextNode(vnode.Text)
	}
	r.stats.Created++
	r.insert(parentElm, vnode.Elm, refElm)
}

func (r *patchRun) createComponent(vnode *VNode, parentElm, refElm Node) bool {
	d := vnode.Data
	if d == nil {
		return false
	}
	reactivated := vnode.ComponentInstance != nil && d.KeepAlive
	if d.Hook != nil && d.Hook.Init != nil {
		d.Hook.Init(vnode, false)
	}
	if vnode.ComponentInstance == nil {
		return false
	}
	r.initComponent(vnode)
	r.insert(parentElm, vnode.Elm, refElm)
	if reactivated {
		r.reactivateComponent(vnode)
	}
	return true
}

func (r *patchRun) initComponent(vnode *VNode) {
	if pending := vnode.Data.PendingInsert; pending != nil {
		r.queue = append(r.queue, pending...)
		vnode.Data.PendingInsert = nil
	}
	vnode.Elm = vnode.ComponentInstance.RootElm()
	if r.isPatchable(vnode) {
		r.invokeCreateHooks(vnode)
		return
	}
	// Empty component root: only the ref and the insert hook apply.
	registerRef(vnode, false)
	r.queue = append(r.queue, vnode)
}

// reactivateComponent runs activate hooks on the innermost rendered root
// of a kept-alive component being re-inserted.
func (r *patchRun) reactivateComponent(vnode *VNode) {
	if len(r.activate) == 0 {
		return
	}
	inner := vnode
	for inner.ComponentInstance != nil {
		next := inner.ComponentInstance.RenderedVNode()
		if next == nil {
			break
		}
		inner = next
	}
	if inner.Data == nil {
		return
	}
	for _, a := range r.activate {
		a(emptyNode, inner)
	}
}

func (r *patchRun) insert(parent, elm, ref Node) {
	if parent == nil {
		return
	}
	if ref != nil {
		if r.ops.ParentNode(ref) == parent {
			r.ops.InsertBefore(parent, elm, ref)
		}
		return
	}
	r.ops.AppendChild(parent, elm)
}

func (r *patchRun) createChildren(vnode *VNode, children []*VNode) {
	checkDuplicateKeys(children)
	for i, ch := range children {
		r.createElm(ch, vnode.Elm, nil, true, children, i)
	}
}

func (r *patchRun) invokeCreateHooks(vnode *VNode) {
	for _, c := range r.create {
		c(emptyNode, vnode)
	}
	if h := vnode.Data.Hook; h != nil {
		if h.Create != nil {
			h.Create(emptyNode, vnode)
		}
		if h.Insert != nil {
			r.queue = append(r.queue, vnode)
		}
	}
}

func (r *patchRun) addVnodes(parentElm, refElm Node, vnodes []*VNode, start, end int) {
	for ; start <= end; start++ {
		r.createElm(vnodes[start], parentElm, refElm, false, vnodes, start)
	}
}

// invokeDestroyHook runs destroy hooks depth first from vnode down.
func (p *Patcher) invokeDestroyHook(vnode *VNode) {
	if d := vnode.Data; d != nil {
		if d.Hook != nil && d.Hook.Destroy != nil {
			d.Hook.Destroy(vnode)
		}
		for _, fn := range p.destroy {
			fn(vnode)
		}
	}
	for _, ch := range vnode.Children {
		if ch != nil {
			p.invokeDestroyHook(ch)
		}
	}
}

func (r *patchRun) removeVnodes(vnodes []*VNode, start, end int) {
	for ; start <= end; start++ {
		ch := vnodes[start]
		if ch == nil {
			continue
		}
		r.stats.Removed++
		if ch.hasTag() {
			r.removeAndInvokeRemoveHook(ch, nil)
			r.invokeDestroyHook(ch)
		} else {
			r.removeNode(ch.Elm)
		}
	}
}

// removeCallback delays physical removal until every remove hook called
// its callback.
type removeCallback struct {
	listeners int
	fire      func()
}

func (r *patchRun) createRmCb(child Node, listeners int) *removeCallback {
	rc := &removeCallback{listeners: listeners}
	rc.fire = func() {
		rc.listeners--
		if rc.listeners == 0 {
			r.removeNode(child)
		}
	}
	return rc
}

func (r *patchRun) removeAndInvokeRemoveHook(vnode *VNode, rm *removeCallback) {
	if rm == nil && vnode.Data == nil {
		r.removeNode(vnode.Elm)
		return
	}
	listeners := len(r.remove) + 1
	if rm != nil {
		rm.listeners += listeners
	} else {
		rm = r.createRmCb(vnode.Elm, listeners)
	}
	if ci := vnode.ComponentInstance; ci != nil {
		if inner := ci.RenderedVNode(); inner != nil && inner.Data != nil {
			r.removeAndInvokeRemoveHook(inner, rm)
		}
	}
	for _, fn := range r.remove {
		fn(vnode, rm.fire)
	}
	if d := vnode.Data; d != nil && d.Hook != nil && d.Hook.Remove != nil {
		d.Hook.Remove(vnode, rm.fire)
	} else {
		rm.fire()
	}
}

func (r *patchRun) removeNode(el Node) {
	if el == nil {
		return
	}
	if parent := r.ops.ParentNode(el); parent != nil {
		r.ops.RemoveChild(parent, el)
	}
}

func (r *patchRun) patchVnode(old, vnode *VNode, ownerArray []*VNode, index int, removeOnly bool) {
	if old == vnode {
		return
	}
	if vnode.Elm != nil && ownerArray != nil {
		vnode = CloneVNode(vnode)
		ownerArray[index] = vnode
	}

	elm := old.Elm
	vnode.Elm = elm

	if old.IsAsyncPlaceholder {
		if vnode.AsyncFactory != nil && vnode.AsyncFactory.Resolved() {
			r.hydrate(elm, vnode)
		} else {
			vnode.IsAsyncPlaceholder = true
		}
		return
	}

	// Static trees are reused; a clone or a render-once node keeps the old
	// realized subtree.
	if vnode.IsStatic && old.IsStatic && sameKey(vnode.Key, old.Key) && (vnode.IsCloned || vnode.IsOnce) {
		vnode.ComponentInstance = old.ComponentInstance
		return
	}

	r.stats.Patched++
	data := vnode.Data
	if data != nil && data.Hook != nil && data.Hook.Prepatch != nil {
		data.Hook.Prepatch(old, vnode)
	}

	oldCh, ch := old.Children, vnode.Children
	if data != nil && r.isPatchable(vnode) {
		for _, u := range r.update {
			u(old, vnode)
		}
		if data.Hook != nil && data.Hook.Update != nil {
			data.Hook.Update(old, vnode)
		}
	}

	if !vnode.isTextual() {
		switch {
		case len(oldCh) > 0 && len(ch) > 0:
			if !sameChildren(oldCh, ch) {
				r.updateChildren(elm, oldCh, ch, removeOnly)
			}
		case len(ch) > 0:
			checkDuplicateKeys(ch)
			if old.isTextual() && old.Text != "" {
				r.ops.SetTextContent(elm, "")
			}
			r.addVnodes(elm, nil, ch, 0, len(ch)-1)
		case len(oldCh) > 0:
			r.removeVnodes(oldCh, 0, len(oldCh)-1)
		case old.isTextual() && old.Text != "":
			r.ops.SetTextContent(elm, "")
		}
	} else if old.Text != vnode.Text {
		r.ops.SetTextContent(elm, vnode.Text)
	}

	if data != nil && data.Hook != nil && data.Hook.Postpatch != nil {
		data.Hook.Postpatch(old, vnode)
	}
}

// sameChildren reports whether a and b are the same slice.
func sameChildren(a, b []*VNode) bool {
	return len(a) == len(b) && len(a) > 0 && &a[0] == &b[0]
}

// invokeInsertHook calls insert hooks for the vnodes created by this
// patch. On the initial patch of a component root the queue is handed to
// the placeholder instead, so the hooks fire once the whole tree is
// attached.
func (r *patchRun) invokeInsertHook(vnode *VNode, initial bool) {
	if initial && vnode.Parent != nil {
		if vnode.Parent.Data == nil {
			vnode.Parent.Data = &Data{}
		}
		vnode.Parent.Data.PendingInsert = r.queue
		return
	}
	for _, v := range r.queue {
		if v.Data != nil && v.Data.Hook != nil && v.Data.Hook.Insert != nil {
			v.Data.Hook.Insert(v)
		}
	}
}
