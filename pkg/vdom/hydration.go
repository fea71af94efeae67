package vdom

import (
	"strings"

	"github.com/vango-dev/reactor/internal/errors"
)

// hydrate adopts the realized node elm for vnode and its subtree. It
// returns false on the first structural mismatch; the caller then falls
// back to creating the tree from scratch.
func (r *patchRun) hydrate(elm Node, vnode *VNode) bool {
	vnode.Elm = elm
	if vnode.IsComment() && vnode.AsyncFactory != nil {
		vnode.IsAsyncPlaceholder = true
		return true
	}
	if !r.assertNodeMatch(elm, vnode) {
		return false
	}

	if d := vnode.Data; d != nil {
		if d.Hook != nil && d.Hook.Init != nil {
			d.Hook.Init(vnode, true)
		}
		if vnode.ComponentInstance != nil {
			r.initComponent(vnode)
			return true
		}
	}

	if !vnode.hasTag() {
		if r.ops.NodeText(elm) != vnode.Text {
			r.ops.SetTextContent(elm, vnode.Text)
		}
		return true
	}

	if len(vnode.Children) > 0 {
		child := r.ops.FirstChild(elm)
		if child == nil {
			r.createChildren(vnode, vnode.Children)
		} else {
			for _, ch := range vnode.Children {
				if child == nil || !r.hydrate(child, ch) {
					errors.WarnError(errors.New("V002").WithDetail("Mismatching child nodes for <"+vnode.Tag+">"), "tag", vnode.Tag)
					return false
				}
				child = r.ops.NextSibling(child)
			}
			if child != nil {
				errors.WarnError(errors.New("V002").WithDetail("Extra child nodes in <"+vnode.Tag+">"), "tag", vnode.Tag)
				return false
			}
		}
	}

	if d := vnode.Data; d != nil && d.needsCreateHooksOnHydrate() {
		r.invokeCreateHooks(vnode)
	}
	return true
}

// needsCreateHooksOnHydrate reports whether data carries anything the
// server rendering could not have produced: listeners, directives, refs,
// hooks or dynamic styles. Attributes and classes are already present.
func (d *Data) needsCreateHooksOnHydrate() bool {
	return len(d.On) > 0 ||
		len(d.NativeOn) > 0 ||
		len(d.Directives) > 0 ||
		d.Ref != "" ||
		d.Hook != nil ||
		len(d.Style) > 0
}

func (r *patchRun) assertNodeMatch(node Node, vnode *VNode) bool {
	if vnode.hasTag() {
		if vnode.IsComponent() {
			return true
		}
		return r.ops.NodeType(node) == ElementNode &&
			strings.EqualFold(vnode.Tag, r.ops.TagName(node))
	}
	if vnode.IsComment() {
		return r.ops.NodeType(node) == CommentNode
	}
	return r.ops.NodeType(node) == TextNode
}
