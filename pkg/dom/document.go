// Package dom is an in-memory rendering target. It implements
// vdom.NodeOps and vdom.ElementOps, counts every mutation, dispatches
// events to registered listeners and serializes trees to HTML.
package dom

import (
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Stats counts mutations applied to a Document.
type Stats struct {
	Created         int
	Inserted        int
	Moved           int
	Removed         int
	TextSet         int
	AttrSet         int
	AttrRemoved     int
	StyleSet        int
	ListenerAdded   int
	ListenerRemoved int
}

// Mutations returns the total number of mutations.
func (s Stats) Mutations() int {
	return s.Created + s.Inserted + s.Moved + s.Removed + s.TextSet +
		s.AttrSet + s.AttrRemoved + s.StyleSet + s.ListenerAdded + s.ListenerRemoved
}

// Document creates and mutates nodes. It is not safe for concurrent use;
// like the reactive tree, it belongs to one goroutine.
type Document struct {
	nextID uint64
	stats  Stats
}

// New creates an empty document.
func New() *Document {
	return &Document{}
}

// Stats returns the mutation counters.
func (d *Document) Stats() Stats {
	return d.stats
}

// ResetStats zeroes the mutation counters.
func (d *Document) ResetStats() {
	d.stats = Stats{}
}

// NewElement creates a detached element without counting it. Use it to
// build mount points and fixtures.
func (d *Document) NewElement(tag string) *Node {
	return d.node(vdom.ElementNode, tag, "")
}

// NewText creates a detached text node without counting it.
func (d *Document) NewText(text string) *Node {
	return d.node(vdom.TextNode, "", text)
}

// NewComment creates a detached comment node without counting it.
func (d *Document) NewComment(text string) *Node {
	return d.node(vdom.CommentNode, "", text)
}

// Append attaches child to parent without counting it and returns child.
func (d *Document) Append(parent, child *Node) *Node {
	child.detach()
	child.parent = parent
	parent.children = append(parent.children, child)
	return child
}

func (d *Document) node(t vdom.NodeType, tag, data string) *Node {
	d.nextID++
	return &Node{ID: d.nextID, Type: t, Tag: tag, Data: data}
}

// nodeOf converts a vdom.Node, which may be nil, to *Node.
func nodeOf(n vdom.Node) *Node {
	if n == nil {
		return nil
	}
	return n.(*Node)
}

// wrap converts *Node to vdom.Node, keeping nil untyped.
func wrap(n *Node) vdom.Node {
	if n == nil {
		return nil
	}
	return n
}

// CreateElement implements vdom.NodeOps.
func (d *Document) CreateElement(tag string, _ *vdom.VNode) vdom.Node {
	d.stats.Created++
	return d.node(vdom.ElementNode, tag, "")
}

// CreateTextNode implements vdom.NodeOps.
func (d *Document) CreateTextNode(text string) vdom.Node {
	d.stats.Created++
	return d.node(vdom.TextNode, "", text)
}

// CreateComment implements vdom.NodeOps.
func (d *Document) CreateComment(text string) vdom.Node {
	d.stats.Created++
	return d.node(vdom.CommentNode, "", text)
}

// InsertBefore implements vdom.NodeOps. A node that is already attached
// is moved.
func (d *Document) InsertBefore(parent, node, ref vdom.Node) {
	p, n, r := nodeOf(parent), nodeOf(node), nodeOf(ref)
	if n.parent != nil {
		d.stats.Moved++
	} else {
		d.stats.Inserted++
	}
	n.detach()
	n.parent = p
	idx := len(p.children)
	if r != nil {
		if i := p.indexOf(r); i >= 0 {
			idx = i
		}
	}
	p.children = append(p.children, nil)
	copy(p.children[idx+1:], p.children[idx:])
	p.children[idx] = n
}

// AppendChild implements vdom.NodeOps.
func (d *Document) AppendChild(parent, node vdom.Node) {
	d.InsertBefore(parent, node, nil)
}

// RemoveChild implements vdom.NodeOps.
func (d *Document) RemoveChild(parent, node vdom.Node) {
	n := nodeOf(node)
	if n.parent != nodeOf(parent) {
		return
	}
	d.stats.Removed++
	n.detach()
}

// ParentNode implements vdom.NodeOps.
func (d *Document) ParentNode(node vdom.Node) vdom.Node {
	n := nodeOf(node)
	if n == nil {
		return nil
	}
	return wrap(n.parent)
}

// NextSibling implements vdom.NodeOps.
func (d *Document) NextSibling(node vdom.Node) vdom.Node {
	n := nodeOf(node)
	if n == nil || n.parent == nil {
		return nil
	}
	i := n.parent.indexOf(n)
	if i < 0 || i+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[i+1]
}

// FirstChild implements vdom.NodeOps.
func (d *Document) FirstChild(node vdom.Node) vdom.Node {
	n := nodeOf(node)
	if n == nil || len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// TagName implements vdom.NodeOps.
func (d *Document) TagName(node vdom.Node) string {
	return nodeOf(node).Tag
}

// NodeType implements vdom.NodeOps.
func (d *Document) NodeType(node vdom.Node) vdom.NodeType {
	return nodeOf(node).Type
}

// NodeText implements vdom.NodeOps.
func (d *Document) NodeText(node vdom.Node) string {
	return nodeOf(node).Data
}

// SetTextContent implements vdom.NodeOps.
func (d *Document) SetTextContent(node vdom.Node, text string) {
	n := nodeOf(node)
	d.stats.TextSet++
	if n.Type != vdom.ElementNode {
		n.Data = text
		return
	}
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
	if text != "" {
		t := d.node(vdom.TextNode, "", text)
		t.parent = n
		n.children = []*Node{t}
	}
}

// SetAttribute implements vdom.ElementOps.
func (d *Document) SetAttribute(el vdom.Node, key, value string) {
	n := nodeOf(el)
	d.stats.AttrSet++
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[key] = value
}

// RemoveAttribute implements vdom.ElementOps.
func (d *Document) RemoveAttribute(el vdom.Node, key string) {
	n := nodeOf(el)
	if _, ok := n.attrs[key]; !ok {
		return
	}
	d.stats.AttrRemoved++
	delete(n.attrs, key)
}

// HasAttribute implements vdom.ElementOps.
func (d *Document) HasAttribute(el vdom.Node, key string) bool {
	_, ok := nodeOf(el).attrs[key]
	return ok
}

// SetStyle implements vdom.ElementOps.
func (d *Document) SetStyle(el vdom.Node, prop, value string) {
	n := nodeOf(el)
	d.stats.StyleSet++
	if value == "" {
		delete(n.style, prop)
		return
	}
	if n.style == nil {
		n.style = make(map[string]string)
	}
	n.style[prop] = value
}

// AddEventListener implements vdom.ElementOps.
func (d *Document) AddEventListener(el vdom.Node, event string, inv *vdom.Invoker) {
	n := nodeOf(el)
	d.stats.ListenerAdded++
	if n.listeners == nil {
		n.listeners = make(map[string][]*vdom.Invoker)
	}
	n.listeners[event] = append(n.listeners[event], inv)
}

// RemoveEventListener implements vdom.ElementOps.
func (d *Document) RemoveEventListener(el vdom.Node, event string, inv *vdom.Invoker) {
	n := nodeOf(el)
	list := n.listeners[event]
	for i, l := range list {
		if l == inv {
			d.stats.ListenerRemoved++
			n.listeners[event] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Dispatch fires event on n. Capture listeners on ancestors run first,
// then listeners on n, then bubbling listeners on ancestors. It returns
// the number of invokers called.
func (d *Document) Dispatch(n *Node, event string, args ...any) int {
	var path []*Node
	for p := n.parent; p != nil; p = p.parent {
		path = append(path, p)
	}
	called := 0
	fire := func(target *Node, capture bool) {
		for _, inv := range append([]*vdom.Invoker(nil), target.listeners[event]...) {
			if inv.Capture == capture {
				inv.Invoke(args...)
				called++
			}
		}
	}
	for i := len(path) - 1; i >= 0; i-- {
		fire(path[i], true)
	}
	for _, inv := range append([]*vdom.Invoker(nil), n.listeners[event]...) {
		inv.Invoke(args...)
		called++
	}
	for _, p := range path {
		fire(p, false)
	}
	return called
}

// Lookup finds a node by id in the subtree of root.
func Lookup(root *Node, id uint64) *Node {
	return root.Find(func(n *Node) bool { return n.ID == id })
}
