package remote

import (
	"slices"

	"github.com/vango-dev/reactor/pkg/protocol"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Target is a rendering target with element support, such as
// *dom.Document.
type Target interface {
	vdom.NodeOps
	vdom.ElementOps
}

// Recorder is a rendering target that forwards every operation to an
// inner target and records the mutations as protocol ops. Nodes get ids
// the first time the recorder sees them. Ids of removed subtrees are
// released at the next Drain, except for subtrees a KeepAlive caches;
// patchers rendering through the recorder must install its Module for
// those to be told apart.
//
// A Recorder belongs to the goroutine that patches through it.
type Recorder struct {
	target Target

	ids   map[vdom.Node]uint64
	nodes map[uint64]vdom.Node
	next  uint64

	listeners map[uint64]map[string][]*vdom.Invoker

	// removed are detached subtree roots waiting for release.
	removed []vdom.Node

	// kept maps roots of KeepAlive-cached subtrees to their placeholder.
	kept map[vdom.Node]*vdom.VNode

	ops []protocol.Op
	seq uint64
}

var (
	_ vdom.NodeOps    = (*Recorder)(nil)
	_ vdom.ElementOps = (*Recorder)(nil)
)

// NewRecorder creates a recorder over target.
func NewRecorder(target Target) *Recorder {
	return &Recorder{
		target:    target,
		ids:       make(map[vdom.Node]uint64),
		nodes:     make(map[uint64]vdom.Node),
		listeners: make(map[uint64]map[string][]*vdom.Invoker),
		kept:      make(map[vdom.Node]*vdom.VNode),
	}
}

// Module returns the patch module that tracks which destroyed vnodes
// leave their elements in a KeepAlive cache.
func (r *Recorder) Module() vdom.Module {
	return vdom.Module{Name: "recorder", Destroy: r.destroyed}
}

type destroyable interface {
	IsDestroyed() bool
}

func alive(v *vdom.VNode) bool {
	ci, ok := v.ComponentInstance.(destroyable)
	return ok && !ci.IsDestroyed()
}

func (r *Recorder) destroyed(vnode *vdom.VNode) {
	el := vnode.Elm
	if el == nil || vnode.Data == nil {
		return
	}
	if vnode.Data.KeepAlive && alive(vnode) {
		r.kept[el] = vnode
		return
	}
	// A cached subtree whose instance is destroyed is released with it.
	if _, ok := r.kept[el]; ok {
		delete(r.kept, el)
		r.removed = append(r.removed, el)
	}
}

// cached reports whether n is still the element of a live KeepAlive
// placeholder. Placeholders re-homed to a new root lose their mark.
func (r *Recorder) cached(n vdom.Node) bool {
	v, ok := r.kept[n]
	if !ok {
		return false
	}
	if v.Elm == n && alive(v) {
		return true
	}
	delete(r.kept, n)
	return false
}

// release forgets n and its descendants and tells the client to do the
// same. Kept subtrees are skipped.
func (r *Recorder) release(n vdom.Node) {
	if r.cached(n) {
		return
	}
	if id, ok := r.ids[n]; ok {
		delete(r.ids, n)
		delete(r.nodes, id)
		delete(r.listeners, id)
		r.record(protocol.Op{Code: protocol.OpRelease, Node: id})
	}
	for c := r.target.FirstChild(n); c != nil; c = r.target.NextSibling(c) {
		r.release(c)
	}
}

func (r *Recorder) releaseRemoved() {
	for _, n := range r.removed {
		if r.target.ParentNode(n) == nil {
			r.release(n)
		}
	}
	clear(r.removed)
	r.removed = r.removed[:0]
}

// ID returns the id of n, assigning one without recording anything if n
// is new. Use it for nodes that exist on both sides before the first
// frame, such as the mount container. A nil node is 0.
func (r *Recorder) ID(n vdom.Node) uint64 {
	if n == nil {
		return 0
	}
	if id, ok := r.ids[n]; ok {
		return id
	}
	r.next++
	r.ids[n] = r.next
	r.nodes[r.next] = n
	return r.next
}

// Node returns the node with id, or nil.
func (r *Recorder) Node(id uint64) vdom.Node {
	return r.nodes[id]
}

// Pending returns the number of ops recorded since the last Drain.
func (r *Recorder) Pending() int {
	return len(r.ops)
}

// Drain releases the subtrees removed since the last call, then returns
// the recorded ops as the next frame and clears them. It returns nil when
// nothing was recorded.
func (r *Recorder) Drain() *protocol.MutationFrame {
	r.releaseRemoved()
	if len(r.ops) == 0 {
		return nil
	}
	r.seq++
	mf := &protocol.MutationFrame{Seq: r.seq, Ops: r.ops}
	r.ops = nil
	return mf
}

// Dispatch invokes the listeners registered for event on the node with
// id and returns how many ran.
func (r *Recorder) Dispatch(id uint64, event string, args ...any) int {
	invs := slices.Clone(r.listeners[id][event])
	for _, inv := range invs {
		inv.Invoke(args...)
	}
	return len(invs)
}

func (r *Recorder) record(op protocol.Op) {
	r.ops = append(r.ops, op)
}

// CreateElement implements vdom.NodeOps.
func (r *Recorder) CreateElement(tag string, vnode *vdom.VNode) vdom.Node {
	n := r.target.CreateElement(tag, vnode)
	r.record(protocol.Op{Code: protocol.OpCreateElement, Node: r.ID(n), Tag: tag})
	return n
}

// CreateTextNode implements vdom.NodeOps.
func (r *Recorder) CreateTextNode(text string) vdom.Node {
	n := r.target.CreateTextNode(text)
	r.record(protocol.Op{Code: protocol.OpCreateText, Node: r.ID(n), Value: text})
	return n
}

// CreateComment implements vdom.NodeOps.
func (r *Recorder) CreateComment(text string) vdom.Node {
	n := r.target.CreateComment(text)
	r.record(protocol.Op{Code: protocol.OpCreateComment, Node: r.ID(n), Value: text})
	return n
}

// InsertBefore implements vdom.NodeOps.
func (r *Recorder) InsertBefore(parent, node, ref vdom.Node) {
	r.target.InsertBefore(parent, node, ref)
	delete(r.kept, node)
	r.record(protocol.Op{Code: protocol.OpInsertBefore, Node: r.ID(node), Parent: r.ID(parent), Ref: r.ID(ref)})
}

// AppendChild implements vdom.NodeOps.
func (r *Recorder) AppendChild(parent, node vdom.Node) {
	r.target.AppendChild(parent, node)
	delete(r.kept, node)
	r.record(protocol.Op{Code: protocol.OpInsertBefore, Node: r.ID(node), Parent: r.ID(parent)})
}

// RemoveChild implements vdom.NodeOps.
func (r *Recorder) RemoveChild(parent, node vdom.Node) {
	r.target.RemoveChild(parent, node)
	r.record(protocol.Op{Code: protocol.OpRemoveChild, Node: r.ID(node), Parent: r.ID(parent)})
	r.removed = append(r.removed, node)
}

// ParentNode implements vdom.NodeOps.
func (r *Recorder) ParentNode(node vdom.Node) vdom.Node { return r.target.ParentNode(node) }

// NextSibling implements vdom.NodeOps.
func (r *Recorder) NextSibling(node vdom.Node) vdom.Node { return r.target.NextSibling(node) }

// FirstChild implements vdom.NodeOps.
func (r *Recorder) FirstChild(node vdom.Node) vdom.Node { return r.target.FirstChild(node) }

// TagName implements vdom.NodeOps.
func (r *Recorder) TagName(node vdom.Node) string { return r.target.TagName(node) }

// NodeType implements vdom.NodeOps.
func (r *Recorder) NodeType(node vdom.Node) vdom.NodeType { return r.target.NodeType(node) }

// NodeText implements vdom.NodeOps.
func (r *Recorder) NodeText(node vdom.Node) string { return r.target.NodeText(node) }

// SetTextContent implements vdom.NodeOps.
func (r *Recorder) SetTextContent(node vdom.Node, text string) {
	r.target.SetTextContent(node, text)
	r.record(protocol.Op{Code: protocol.OpSetText, Node: r.ID(node), Value: text})
}

// SetAttribute implements vdom.ElementOps.
func (r *Recorder) SetAttribute(el vdom.Node, key, value string) {
	r.target.SetAttribute(el, key, value)
	r.record(protocol.Op{Code: protocol.OpSetAttr, Node: r.ID(el), Key: key, Value: value})
}

// RemoveAttribute implements vdom.ElementOps.
func (r *Recorder) RemoveAttribute(el vdom.Node, key string) {
	r.target.RemoveAttribute(el, key)
	r.record(protocol.Op{Code: protocol.OpRemoveAttr, Node: r.ID(el), Key: key})
}

// HasAttribute implements vdom.ElementOps.
func (r *Recorder) HasAttribute(el vdom.Node, key string) bool {
	return r.target.HasAttribute(el, key)
}

// SetStyle implements vdom.ElementOps.
func (r *Recorder) SetStyle(el vdom.Node, prop, value string) {
	r.target.SetStyle(el, prop, value)
	r.record(protocol.Op{Code: protocol.OpSetStyle, Node: r.ID(el), Key: prop, Value: value})
}

// AddEventListener implements vdom.ElementOps.
func (r *Recorder) AddEventListener(el vdom.Node, event string, inv *vdom.Invoker) {
	r.target.AddEventListener(el, event, inv)
	id := r.ID(el)
	byEvent := r.listeners[id]
	if byEvent == nil {
		byEvent = make(map[string][]*vdom.Invoker)
		r.listeners[id] = byEvent
	}
	byEvent[event] = append(byEvent[event], inv)
	r.record(protocol.Op{Code: protocol.OpAddListener, Node: id, Key: event})
}

// RemoveEventListener implements vdom.ElementOps.
func (r *Recorder) RemoveEventListener(el vdom.Node, event string, inv *vdom.Invoker) {
	r.target.RemoveEventListener(el, event, inv)
	id := r.ID(el)
	if byEvent := r.listeners[id]; byEvent != nil {
		if i := slices.Index(byEvent[event], inv); i >= 0 {
			byEvent[event] = slices.Delete(byEvent[event], i, i+1)
		}
		if len(byEvent[event]) == 0 {
			delete(byEvent, event)
		}
	}
	r.record(protocol.Op{Code: protocol.OpRemoveListener, Node: id, Key: event})
}
