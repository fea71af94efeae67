package component

import (
	"strings"
	"unicode"
)

// Registry holds named assets (components, directives) and falls back to
// its parent for names it does not define.
type Registry[T any] struct {
	own    map[string]T
	parent *Registry[T]
}

// NewRegistry creates a registry chained to parent, which may be nil.
func NewRegistry[T any](parent *Registry[T]) *Registry[T] {
	return &Registry[T]{parent: parent}
}

// Register defines name in this registry.
func (r *Registry[T]) Register(name string, v T) {
	if r.own == nil {
		r.own = make(map[string]T)
	}
	r.own[name] = v
}

// Lookup resolves name, trying it as given, then camelCased, then
// PascalCased, in this registry and then in its ancestors.
func (r *Registry[T]) Lookup(name string) (T, bool) {
	candidates := []string{name, camelize(name), capitalize(camelize(name))}
	for cur := r; cur != nil; cur = cur.parent {
		for _, c := range candidates {
			if v, ok := cur.own[c]; ok {
				return v, true
			}
		}
	}
	var zero T
	return zero, false
}

// camelize turns "my-comp" into "myComp".
func camelize(s string) string {
	if !strings.Contains(s, "-") {
		return s
	}
	var b strings.Builder
	upper := false
	for _, r := range s {
		if r == '-' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// hyphenate turns "myProp" into "my-prop".
func hyphenate(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
