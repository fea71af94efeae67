package vdom

import (
	"sort"
	"strings"

	"github.com/vango-dev/reactor/internal/errors"
)

// Directive is a directive binding on an element.
type Directive struct {
	Name      string
	Value     any
	OldValue  any
	Arg       string
	OldArg    string
	Modifiers map[string]bool
	Def       *DirectiveDef
}

// DirectiveHook is called with the realized element, the binding and the
// new and old vnodes.
type DirectiveHook func(el Node, binding *Directive, vnode, old *VNode)

// DirectiveDef holds the hooks of a directive. Any hook may be nil.
type DirectiveDef struct {
	Bind             DirectiveHook
	Inserted         DirectiveHook
	Update           DirectiveHook
	ComponentUpdated DirectiveHook
	Unbind           DirectiveHook
}

func (d *Directive) rawName() string {
	var b strings.Builder
	b.WriteString(d.Name)
	if d.Arg != "" {
		b.WriteByte(':')
		b.WriteString(d.Arg)
	}
	mods := make([]string, 0, len(d.Modifiers))
	for m, on := range d.Modifiers {
		if on {
			mods = append(mods, m)
		}
	}
	sort.Strings(mods)
	for _, m := range mods {
		b.WriteByte('.')
		b.WriteString(m)
	}
	return b.String()
}

// DirectivesModule runs directive hooks as elements are created, patched
// and destroyed.
func DirectivesModule() Module {
	update := func(old, vnode *VNode) {
		if hasDirectives(old) || hasDirectives(vnode) {
			updateDirectives(old, vnode)
		}
	}
	return Module{
		Name:    "directives",
		Create:  update,
		Update:  update,
		Destroy: func(vnode *VNode) { update(vnode, emptyNode) },
	}
}

func hasDirectives(v *VNode) bool {
	return v.Data != nil && len(v.Data.Directives) > 0
}

func normalizeDirectives(v *VNode) (map[string]*Directive, []string) {
	if !hasDirectives(v) {
		return nil, nil
	}
	m := make(map[string]*Directive, len(v.Data.Directives))
	order := make([]string, 0, len(v.Data.Directives))
	for _, d := range v.Data.Directives {
		if d == nil {
			continue
		}
		if d.Modifiers == nil {
			d.Modifiers = map[string]bool{}
		}
		name := d.rawName()
		if _, dup := m[name]; !dup {
			order = append(order, name)
		}
		m[name] = d
	}
	return m, order
}

func updateDirectives(old, vnode *VNode) {
	isCreate := old == emptyNode
	oldDirs, oldOrder := normalizeDirectives(old)
	newDirs, newOrder := normalizeDirectives(vnode)

	var withInsert, withPostpatch []*Directive
	for _, key := range newOrder {
		dir := newDirs[key]
		oldDir, existed := oldDirs[key]
		if !existed {
			callDirectiveHook(dir, "bind", vnode, old)
			if dir.Def != nil && dir.Def.Inserted != nil {
				withInsert = append(withInsert, dir)
			}
			continue
		}
		dir.OldValue = oldDir.Value
		dir.OldArg = oldDir.Arg
		callDirectiveHook(dir, "update", vnode, old)
		if dir.Def != nil && dir.Def.ComponentUpdated != nil {
			withPostpatch = append(withPostpatch, dir)
		}
	}

	if len(withInsert) > 0 {
		callInsert := func() {
			for _, dir := range withInsert {
				callDirectiveHook(dir, "inserted", vnode, old)
			}
		}
		if isCreate {
			mergeInsertHook(vnode, callInsert)
		} else {
			callInsert()
		}
	}

	if len(withPostpatch) > 0 {
		mergePostpatchHook(vnode, func() {
			for _, dir := range withPostpatch {
				callDirectiveHook(dir, "componentUpdated", vnode, old)
			}
		})
	}

	if !isCreate {
		for _, key := range oldOrder {
			if _, kept := newDirs[key]; !kept {
				callDirectiveHook(oldDirs[key], "unbind", old, old)
			}
		}
	}
}

func callDirectiveHook(dir *Directive, hook string, vnode, old *VNode) {
	if dir.Def == nil {
		return
	}
	var fn DirectiveHook
	switch hook {
	case "bind":
		fn = dir.Def.Bind
	case "inserted":
		fn = dir.Def.Inserted
	case "update":
		fn = dir.Def.Update
	case "componentUpdated":
		fn = dir.Def.ComponentUpdated
	case "unbind":
		fn = dir.Def.Unbind
	}
	if fn == nil {
		return
	}
	defer errors.RecoverAs("C007", scopeOf(vnode.Context), "directive "+dir.Name+" "+hook+" hook")
	fn(vnode.Elm, dir, vnode, old)
}

// mergeInsertHook appends fn to the vnode's insert hook. Hooks are copied
// first so a Hooks value shared between vnodes is never modified.
func mergeInsertHook(vnode *VNode, fn func()) {
	h := ownHooks(vnode)
	prev := h.Insert
	h.Insert = func(v *VNode) {
		if prev != nil {
			prev(v)
		}
		fn()
	}
}

func mergePostpatchHook(vnode *VNode, fn func()) {
	h := ownHooks(vnode)
	prev := h.Postpatch
	h.Postpatch = func(old, v *VNode) {
		if prev != nil {
			prev(old, v)
		}
		fn()
	}
}

func ownHooks(vnode *VNode) *Hooks {
	if vnode.Data.Hook == nil {
		vnode.Data.Hook = &Hooks{}
		return vnode.Data.Hook
	}
	h := *vnode.Data.Hook
	vnode.Data.Hook = &h
	return vnode.Data.Hook
}
