package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Comment creates a comment node.
func Comment(text string) *VNode {
	return &VNode{
		Kind: KindComment,
		Text: text,
	}
}

// Empty creates the placeholder rendered where nothing is shown.
func Empty() *VNode {
	return Comment("")
}

// Static marks a subtree as never changing. Re-rendering a static subtree
// with CloneVNode lets the patcher skip it entirely.
func Static(v *VNode) *VNode {
	markStatic(v, false)
	return v
}

// Once marks a subtree rendered a single time.
func Once(v *VNode) *VNode {
	markStatic(v, true)
	return v
}

func markStatic(v *VNode, once bool) {
	if v == nil {
		return
	}
	v.IsStatic = true
	v.IsOnce = once
	for _, ch := range v.Children {
		markStatic(ch, once)
	}
}
