package component

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/vango-dev/reactor/pkg/vdom"
)

// KeepAlive caches the component instance rendered in its default slot
// instead of destroying it when it is switched out. Cached instances are
// deactivated and activated again when they come back.
//
// Props:
//   - include, exclude: component names as a comma separated string, a
//     []string or a *regexp.Regexp
//   - max: the number of instances to keep; the least recently used one
//     is destroyed first
var KeepAlive = &Options{
	Name:     "KeepAlive",
	Abstract: true,
	Props: map[string]PropDef{
		"include": {},
		"exclude": {},
		"max":     {},
	},
	Created:   []HookFunc{func(vm *Instance) { vm.keepAlive = &keepAliveCache{entries: make(map[any]*vdom.VNode)} }},
	Mounted:   []HookFunc{watchKeepAlivePatterns},
	Destroyed: []HookFunc{func(vm *Instance) { vm.keepAlive.pruneAll() }},
	Render:    renderKeepAlive,
}

type keepAliveCache struct {
	entries map[any]*vdom.VNode
	keys    []any // least recently used first
}

func (c *keepAliveCache) touch(key any) {
	if i := slices.Index(c.keys, key); i >= 0 {
		c.keys = slices.Delete(c.keys, i, i+1)
	}
	c.keys = append(c.keys, key)
}

// prune destroys the instance cached under key unless it is the one
// currently rendered.
func (c *keepAliveCache) prune(key any, current *vdom.VNode) {
	if v := c.entries[key]; v != nil && (current == nil || v.Tag != current.Tag) {
		if vm := instanceOf(v); vm != nil {
			vm.Destroy()
		}
	}
	delete(c.entries, key)
	if i := slices.Index(c.keys, key); i >= 0 {
		c.keys = slices.Delete(c.keys, i, i+1)
	}
}

func (c *keepAliveCache) pruneAll() {
	for _, key := range slices.Clone(c.keys) {
		c.prune(key, nil)
	}
}

// pruneUnless drops entries whose component name fails keep.
func (c *keepAliveCache) pruneUnless(keep func(name string) bool, current *vdom.VNode) {
	for _, key := range slices.Clone(c.keys) {
		v := c.entries[key]
		if v == nil {
			continue
		}
		if name := componentName(v); name != "" && !keep(name) {
			c.prune(key, current)
		}
	}
}

func watchKeepAlivePatterns(vm *Instance) {
	for _, prop := range []string{"include", "exclude"} {
		exclude := prop == "exclude"
		vm.Watch(prop, func(pattern, _ any) {
			if pattern == nil {
				return
			}
			vm.keepAlive.pruneUnless(func(name string) bool {
				return matchesPattern(pattern, name) != exclude
			}, vm.vnode)
		}, WatchOptions{})
	}
}

func renderKeepAlive(vm *Instance, _ CreateElement) *vdom.VNode {
	slot := vm.Slot("default")
	vnode := firstComponentChild(slot)
	if vnode == nil || vnode.ComponentOptions == nil {
		if vnode != nil {
			return vnode
		}
		if len(slot) > 0 {
			return slot[0]
		}
		return nil
	}

	name := componentName(vnode)
	include, exclude := vm.Get("include"), vm.Get("exclude")
	if (include != nil && (name == "" || !matchesPattern(include, name))) ||
		(exclude != nil && name != "" && matchesPattern(exclude, name)) {
		return vnode
	}

	c := vm.keepAlive
	key := cacheKey(vnode)
	if cached, ok := c.entries[key]; ok {
		vnode.ComponentInstance = cached.ComponentInstance
		c.entries[key] = vnode
		c.touch(key)
	} else {
		c.entries[key] = vnode
		c.keys = append(c.keys, key)
		if max := toInt(vm.Get("max")); max > 0 && len(c.keys) > max {
			c.prune(c.keys[0], vm.vnode)
		}
	}
	vnode.Data.KeepAlive = true
	return vnode
}

// cacheKey is the vnode key, or "<cid>::<tag>" for unkeyed components.
// A constructor that is not a *Ctor gets cid -1.
func cacheKey(v *vdom.VNode) any {
	if v.Key != nil {
		return v.Key
	}
	cid := -1
	if ctor, ok := v.ComponentOptions.Ctor.(*Ctor); ok {
		cid = ctor.cid
	}
	return fmt.Sprintf("%d::%s", cid, v.ComponentOptions.Tag)
}

func componentName(v *vdom.VNode) string {
	co := v.ComponentOptions
	if co == nil {
		return ""
	}
	if ctor, ok := co.Ctor.(*Ctor); ok {
		if n := ctor.resolveOptions().Name; n != "" {
			return n
		}
	}
	return co.Tag
}

func matchesPattern(pattern any, name string) bool {
	switch p := pattern.(type) {
	case string:
		return slices.Contains(strings.Split(p, ","), name)
	case []string:
		return slices.Contains(p, name)
	case *regexp.Regexp:
		return p.MatchString(name)
	}
	return false
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}
