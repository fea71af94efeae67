package vdom

import (
	"fmt"
	"maps"
	"sort"
	"strings"
)

// Module is a set of patch-phase hooks that keeps one aspect of a realized
// element (attributes, classes, listeners...) in sync with its vnode.
// Any hook may be nil.
type Module struct {
	Name     string
	Create   func(old, vnode *VNode)
	Activate func(old, vnode *VNode)
	Update   func(old, vnode *VNode)
	Remove   func(vnode *VNode, remove func())
	Destroy  func(vnode *VNode)
}

// emptyNode is the "old" vnode passed to create hooks.
var emptyNode = &VNode{Data: &Data{}}

// IsEmpty reports whether v is the placeholder passed as the old node to
// create hooks.
func IsEmpty(v *VNode) bool {
	return v == emptyNode
}

// DefaultModules returns the modules for ops: ref and directives always,
// plus attrs, class, style and events when ops implements ElementOps.
func DefaultModules(ops NodeOps) []Module {
	mods := []Module{}
	if el, ok := ops.(ElementOps); ok {
		mods = append(mods,
			AttrsModule(el),
			ClassModule(el),
			StyleModule(el),
			EventsModule(el),
		)
	}
	return append(mods, RefModule(), DirectivesModule())
}

// booleanAttrs render as key="key" when true and are removed when false.
var booleanAttrs = map[string]bool{
	"allowfullscreen": true, "async": true, "autofocus": true, "autoplay": true,
	"checked": true, "controls": true, "default": true, "defer": true,
	"disabled": true, "formnovalidate": true, "hidden": true, "inert": true,
	"ismap": true, "loop": true, "multiple": true, "muted": true,
	"nomodule": true, "novalidate": true, "open": true, "readonly": true,
	"required": true, "reversed": true, "selected": true,
}

// enumeratedAttrs only accept "true" or "false".
var enumeratedAttrs = map[string]bool{
	"contenteditable": true,
	"draggable":       true,
	"spellcheck":      true,
}

// IsBooleanAttr reports whether key is a boolean HTML attribute.
func IsBooleanAttr(key string) bool {
	return booleanAttrs[key]
}

// AttrString converts an attribute value to its rendered form. The second
// result is false when the attribute should be absent.
func AttrString(key string, value any) (string, bool) {
	switch {
	case booleanAttrs[key]:
		if value == nil || value == false {
			return "", false
		}
		return key, true
	case enumeratedAttrs[key]:
		if value == nil || value == false || value == "false" {
			return "false", true
		}
		return "true", true
	}
	switch v := value.(type) {
	case nil:
		return "", false
	case bool:
		if !v {
			return "", false
		}
		return "", true
	case string:
		return v, true
	default:
		return fmt.Sprint(v), true
	}
}

// AttrsModule keeps element attributes in sync with Data.Attrs.
func AttrsModule(ops ElementOps) Module {
	update := func(old, vnode *VNode) {
		var oldAttrs, attrs map[string]any
		if old.Data != nil {
			oldAttrs = old.Data.Attrs
		}
		if vnode.Data != nil {
			attrs = vnode.Data.Attrs
		}
		if len(oldAttrs) == 0 && len(attrs) == 0 {
			return
		}
		el := vnode.Elm
		for _, key := range sortedKeys(attrs) {
			cur := attrs[key]
			prev, had := oldAttrs[key]
			if had && looseEqual(prev, cur) {
				continue
			}
			if s, ok := AttrString(key, cur); ok {
				ops.SetAttribute(el, key, s)
			} else {
				ops.RemoveAttribute(el, key)
			}
		}
		for _, key := range sortedKeys(oldAttrs) {
			if _, ok := attrs[key]; !ok {
				ops.RemoveAttribute(el, key)
			}
		}
	}
	return Module{Name: "attrs", Create: update, Update: update}
}

// ClassModule renders StaticClass and Class into the class attribute,
// merging the classes of component placeholders with their root element.
func ClassModule(ops ElementOps) Module {
	update := func(old, vnode *VNode) {
		if !hasClassData(vnode) && !hasClassData(old) && old.appliedClass == "" {
			return
		}
		cls := RenderClass(vnode)
		if cls == old.appliedClass && old != emptyNode {
			vnode.appliedClass = cls
			return
		}
		if cls == "" {
			ops.RemoveAttribute(vnode.Elm, "class")
		} else {
			ops.SetAttribute(vnode.Elm, "class", cls)
		}
		vnode.appliedClass = cls
	}
	return Module{Name: "class", Create: update, Update: update}
}

func hasClassData(v *VNode) bool {
	if v == nil {
		return false
	}
	if v.Data != nil && (v.Data.StaticClass != "" || v.Data.Class != nil) {
		return true
	}
	for p := v.Parent; p != nil; p = p.Parent {
		if p.Data != nil && (p.Data.StaticClass != "" || p.Data.Class != nil) {
			return true
		}
	}
	return false
}

// RenderClass computes the class attribute of a vnode: its own classes,
// those of the component root it stands for, and those of every component
// placeholder it is the root of.
func RenderClass(vnode *VNode) string {
	var parts []string
	add := func(d *Data) {
		if d == nil {
			return
		}
		if d.StaticClass != "" {
			parts = append(parts, d.StaticClass)
		}
		if s := StringifyClass(d.Class); s != "" {
			parts = append(parts, s)
		}
	}
	child := vnode
	for child.ComponentInstance != nil {
		child = child.ComponentInstance.RenderedVNode()
		if child == nil {
			break
		}
		add(child.Data)
	}
	add(vnode.Data)
	for p := vnode.Parent; p != nil; p = p.Parent {
		add(p.Data)
	}
	return strings.Join(parts, " ")
}

// StringifyClass flattens a dynamic class binding.
func StringifyClass(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(nonEmpty(v), " ")
	case map[string]bool:
		var out []string
		for _, k := range sortedKeys(v) {
			if v[k] {
				out = append(out, k)
			}
		}
		return strings.Join(out, " ")
	case []any:
		var out []string
		for _, item := range v {
			if s := StringifyClass(item); s != "" {
				out = append(out, s)
			}
		}
		return strings.Join(out, " ")
	}
	return ""
}

// StyleModule keeps inline styles in sync with StaticStyle and Style.
func StyleModule(ops ElementOps) Module {
	update := func(old, vnode *VNode) {
		style := RenderStyle(vnode)
		prev := old.appliedStyle
		if len(style) == 0 && len(prev) == 0 {
			return
		}
		for _, prop := range sortedKeys(prev) {
			if _, ok := style[prop]; !ok {
				ops.SetStyle(vnode.Elm, prop, "")
			}
		}
		for _, prop := range sortedKeys(style) {
			if cur := style[prop]; prev[prop] != cur {
				ops.SetStyle(vnode.Elm, prop, cur)
			}
		}
		vnode.appliedStyle = style
	}
	return Module{Name: "style", Create: update, Update: update}
}

// RenderStyle merges the inline style of a vnode with its component root
// and the placeholders it stands for. Outer declarations win.
func RenderStyle(vnode *VNode) map[string]string {
	out := map[string]string{}
	add := func(d *Data) {
		if d == nil {
			return
		}
		maps.Copy(out, d.StaticStyle)
		maps.Copy(out, d.Style)
	}
	var chain []*Data
	child := vnode
	for child.ComponentInstance != nil {
		child = child.ComponentInstance.RenderedVNode()
		if child == nil {
			break
		}
		chain = append(chain, child.Data)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		add(chain[i])
	}
	add(vnode.Data)
	for p := vnode.Parent; p != nil; p = p.Parent {
		add(p.Data)
	}
	return out
}

// RefOwner is implemented by render contexts that collect refs.
type RefOwner interface {
	SetRef(name string, value any, inFor bool)
	RemoveRef(name string, value any, inFor bool)
}

// RefModule registers elements and component instances with their
// context's refs.
func RefModule() Module {
	return Module{
		Name:   "ref",
		Create: func(_, vnode *VNode) { registerRef(vnode, false) },
		Update: func(old, vnode *VNode) {
			if refName(old) != refName(vnode) {
				registerRef(old, true)
				registerRef(vnode, false)
			}
		},
		Destroy: func(vnode *VNode) { registerRef(vnode, true) },
	}
}

func refName(v *VNode) string {
	if v.Data == nil {
		return ""
	}
	return v.Data.Ref
}

func registerRef(vnode *VNode, removal bool) {
	name := refName(vnode)
	if name == "" {
		return
	}
	owner, ok := vnode.Context.(RefOwner)
	if !ok {
		return
	}
	var ref any = vnode.Elm
	if vnode.ComponentInstance != nil {
		ref = vnode.ComponentInstance
	}
	if removal {
		owner.RemoveRef(name, ref, vnode.Data.RefInFor)
	} else {
		owner.SetRef(name, ref, vnode.Data.RefInFor)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func nonEmpty(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// looseEqual compares attribute values, treating incomparable values as
// different.
func looseEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
