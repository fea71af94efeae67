package dom

import (
	"slices"

	"github.com/vango-dev/reactor/pkg/vdom"
)

// Node is an in-memory element, text or comment node.
type Node struct {
	ID   uint64
	Type vdom.NodeType
	Tag  string
	Data string

	attrs     map[string]string
	style     map[string]string
	listeners map[string][]*vdom.Invoker

	parent   *Node
	children []*Node
}

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// Attr returns an attribute value and whether it is set.
func (n *Node) Attr(key string) (string, bool) {
	v, ok := n.attrs[key]
	return v, ok
}

// Attrs returns a copy of the attributes.
func (n *Node) Attrs() map[string]string {
	out := make(map[string]string, len(n.attrs))
	for k, v := range n.attrs {
		out[k] = v
	}
	return out
}

// StyleProp returns one inline style property.
func (n *Node) StyleProp(prop string) string {
	return n.style[prop]
}

// Listeners returns the number of listeners registered for event.
func (n *Node) Listeners(event string) int {
	return len(n.listeners[event])
}

// TextContent returns the concatenated text of the subtree.
func (n *Node) TextContent() string {
	if n.Type == vdom.TextNode {
		return n.Data
	}
	if n.Type == vdom.CommentNode {
		return ""
	}
	var out []byte
	for _, c := range n.children {
		out = append(out, c.TextContent()...)
	}
	return string(out)
}

// Find returns the first node in the subtree (including n) matching fn,
// in document order.
func (n *Node) Find(fn func(*Node) bool) *Node {
	if fn(n) {
		return n
	}
	for _, c := range n.children {
		if found := c.Find(fn); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every node in the subtree matching fn.
func (n *Node) FindAll(fn func(*Node) bool) []*Node {
	var out []*Node
	n.walk(func(c *Node) {
		if fn(c) {
			out = append(out, c)
		}
	})
	return out
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}

func (n *Node) indexOf(child *Node) int {
	return slices.Index(n.children, child)
}

func (n *Node) detach() {
	if n.parent == nil {
		return
	}
	if i := n.parent.indexOf(n); i >= 0 {
		n.parent.children = slices.Delete(n.parent.children, i, i+1)
	}
	n.parent = nil
}

// ByTag matches elements with the given tag.
func ByTag(tag string) func(*Node) bool {
	return func(n *Node) bool { return n.Type == vdom.ElementNode && n.Tag == tag }
}

// ByAttr matches elements whose attribute key equals value.
func ByAttr(key, value string) func(*Node) bool {
	return func(n *Node) bool {
		v, ok := n.attrs[key]
		return ok && v == value
	}
}
