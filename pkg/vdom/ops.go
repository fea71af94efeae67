package vdom

// NodeType identifies the kind of a realized node.
type NodeType uint8

const (
	ElementNode NodeType = 1
	TextNode    NodeType = 3
	CommentNode NodeType = 8
)

// NodeOps is the rendering target. The patcher never touches realized
// nodes except through it.
type NodeOps interface {
	CreateElement(tag string, vnode *VNode) Node
	CreateTextNode(text string) Node
	CreateComment(text string) Node

	// InsertBefore inserts node into parent before ref. A nil ref appends.
	InsertBefore(parent, node, ref Node)
	RemoveChild(parent, node Node)
	AppendChild(parent, node Node)

	// ParentNode, NextSibling and FirstChild return nil when absent.
	ParentNode(node Node) Node
	NextSibling(node Node) Node
	FirstChild(node Node) Node

	TagName(node Node) string
	NodeType(node Node) NodeType

	// NodeText returns the data of a text or comment node.
	NodeText(node Node) string

	// SetTextContent replaces the children of an element with text, or
	// the data of a text or comment node.
	SetTextContent(node Node, text string)
}

// ElementOps is implemented by targets that support attributes, inline
// styles and listeners. The attrs, class, style and events modules need
// it; without it only structure is patched.
type ElementOps interface {
	SetAttribute(el Node, key, value string)
	RemoveAttribute(el Node, key string)
	HasAttribute(el Node, key string) bool

	// SetStyle sets one inline style property; an empty value removes it.
	SetStyle(el Node, prop, value string)

	AddEventListener(el Node, event string, inv *Invoker)
	RemoveEventListener(el Node, event string, inv *Invoker)
}
