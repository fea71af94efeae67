package vdom

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, etc.
	KindText                   // Plain text node
	KindComment                // Comment, also the empty placeholder
	KindComponent              // Component placeholder
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// Node is a realized node of the rendering target. Its concrete type
// belongs to the NodeOps implementation and must be comparable.
type Node = any

// VNode is a virtual tree node.
//
// A VNode is immutable once rendered, except for Elm (and the component
// instance on placeholders), which the patcher sets when the node is
// realized. A VNode that has already been patched into the tree must be
// cloned before it is reused; the patcher does this automatically for
// children it finds already realized.
type VNode struct {
	Kind     VKind
	Tag      string
	Key      any // string or int, nil when unkeyed
	Data     *Data
	Children []*VNode
	Text     string

	// Elm is the realized node.
	Elm Node

	// Context is the component instance whose render produced this node.
	Context any

	// Parent is the component placeholder this node is the rendered root
	// of.
	Parent *VNode

	// ComponentOptions is set on component placeholders.
	ComponentOptions *ComponentOptions

	// ComponentInstance is set on component placeholders by the Init hook.
	ComponentInstance ComponentInstance

	// AsyncFactory marks the placeholder rendered for an unresolved async
	// component.
	AsyncFactory AsyncFactory

	IsStatic           bool
	IsCloned           bool
	IsOnce             bool
	IsRootInsert       bool
	IsAsyncPlaceholder bool

	invokers     map[string]*Invoker
	appliedClass string
	appliedStyle map[string]string
}

// ComponentOptions carries what a placeholder needs to instantiate or
// update a child component.
type ComponentOptions struct {
	Ctor      any
	Tag       string
	PropsData map[string]any
	Listeners map[string][]Handler
	Children  []*VNode
}

// ComponentInstance is the part of a mounted component the patcher uses.
type ComponentInstance interface {
	// RootElm returns the realized root node of the component.
	RootElm() Node

	// RenderedVNode returns the root of the component's current render.
	RenderedVNode() *VNode
}

// AsyncFactory is a lazily resolved component definition.
type AsyncFactory interface {
	Resolved() bool
	Failed() bool
}

// Data holds everything a module reads from a vnode.
type Data struct {
	Attrs       map[string]any
	StaticClass string
	Class       any // string, []string, map[string]bool or []any of those
	StaticStyle map[string]string
	Style       map[string]string

	// On holds listeners. On elements they are native listeners; on
	// component placeholders they are component events.
	On map[string][]Handler

	// NativeOn holds native listeners for a component's root element.
	NativeOn map[string][]Handler

	Directives []*Directive
	Ref        string
	RefInFor   bool

	// Props is the raw prop input for component placeholders.
	Props map[string]any
	Slot  string
	Hook  *Hooks

	KeepAlive     bool
	PendingInsert []*VNode
}

// Hooks are per-vnode lifecycle callbacks. Component placeholders use
// Init, Prepatch, Insert and Destroy; the rest serve element-level
// behavior such as directives and transitions.
type Hooks struct {
	Init      func(vnode *VNode, hydrating bool)
	Prepatch  func(old, vnode *VNode)
	Insert    func(vnode *VNode)
	Destroy   func(vnode *VNode)
	Create    func(empty, vnode *VNode)
	Update    func(old, vnode *VNode)
	Postpatch func(old, vnode *VNode)
	Remove    func(vnode *VNode, remove func())
}

// IsComment reports whether v is a comment or empty placeholder.
func (v *VNode) IsComment() bool {
	return v != nil && v.Kind == KindComment
}

// IsComponent reports whether v is a component placeholder.
func (v *VNode) IsComponent() bool {
	return v != nil && v.ComponentOptions != nil
}

// isTextual reports whether v renders as a text or comment node.
func (v *VNode) isTextual() bool {
	return v.Kind == KindText || v.Kind == KindComment
}

// hasTag reports whether v realizes as an element (directly or through a
// component).
func (v *VNode) hasTag() bool {
	return v.Tag != ""
}

// CloneVNode returns a shallow copy of v marked as cloned. Children are
// cloned recursively so the copy can be patched independently.
func CloneVNode(v *VNode) *VNode {
	if v == nil {
		return nil
	}
	c := *v
	if v.Children != nil {
		c.Children = make([]*VNode, len(v.Children))
		for i, ch := range v.Children {
			c.Children[i] = CloneVNode(ch)
		}
	}
	if v.ComponentOptions != nil {
		opts := *v.ComponentOptions
		c.ComponentOptions = &opts
	}
	c.Elm = v.Elm
	c.IsCloned = true
	return &c
}

// SameVNode reports whether b can be patched in place of a: same key and
// either same tag, comment flag, data definedness and input type, or the
// same resolved async factory.
func SameVNode(a, b *VNode) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !sameKey(a.Key, b.Key) {
		return false
	}
	if a.Tag == b.Tag &&
		a.IsComment() == b.IsComment() &&
		(a.Data != nil) == (b.Data != nil) &&
		sameInputType(a, b) {
		return true
	}
	return a.IsAsyncPlaceholder &&
		a.AsyncFactory != nil &&
		a.AsyncFactory == b.AsyncFactory &&
		!b.AsyncFactory.Failed()
}

func sameKey(a, b any) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// textInputTypes are input types that render and patch identically.
var textInputTypes = map[string]bool{
	"text":     true,
	"number":   true,
	"password": true,
	"search":   true,
	"email":    true,
	"tel":      true,
	"url":      true,
}

func sameInputType(a, b *VNode) bool {
	if a.Tag != "input" {
		return true
	}
	ta, tb := inputType(a), inputType(b)
	return ta == tb || (textInputTypes[ta] && textInputTypes[tb])
}

func inputType(v *VNode) string {
	if v.Data == nil || v.Data.Attrs == nil {
		return ""
	}
	if t, ok := v.Data.Attrs["type"].(string); ok {
		return t
	}
	return ""
}
