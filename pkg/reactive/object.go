package reactive

import (
	"slices"
	"sort"

	"github.com/vango-dev/reactor/internal/errors"
)

// Object is a reactive container of string-keyed fields kept in insertion
// order. Fields become reactive once the object is observed (Observe,
// DefineReactive or Set on an observed parent); until then they are plain
// storage.
type Object struct {
	keys   []string
	fields map[string]*field
	ob     *Observer
	frozen bool
}

// NewObject creates an Object from a map. Keys are added in sorted order so
// iteration is deterministic.
func NewObject(m map[string]any) *Object {
	o := &Object{fields: make(map[string]*field, len(m))}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		o.add(k, &field{value: m[k]})
	}
	return o
}

// ObjectOf creates an Object from alternating key/value pairs, preserving
// their order. A non-string key panics; a trailing key gets nil.
func ObjectOf(kv ...any) *Object {
	o := &Object{fields: make(map[string]*field, len(kv)/2)}
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic("reactive: ObjectOf keys must be strings")
		}
		var v any
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		if f, exists := o.fields[k]; exists {
			f.value = v
			continue
		}
		o.add(k, &field{value: v})
	}
	return o
}

func (o *Object) add(key string, f *field) {
	if o.fields == nil {
		o.fields = make(map[string]*field)
	}
	o.keys = append(o.keys, key)
	o.fields[key] = f
}

func (o *Object) remove(key string) {
	if _, ok := o.fields[key]; !ok {
		return
	}
	delete(o.fields, key)
	if i := slices.Index(o.keys, key); i >= 0 {
		o.keys = slices.Delete(o.keys, i, i+1)
	}
}

// Get reads a field. Reading a reactive field while a watcher evaluates
// subscribes that watcher. Missing keys read as nil.
func (o *Object) Get(key string) any {
	f, ok := o.fields[key]
	if !ok {
		return nil
	}
	return f.get()
}

// Lookup is Get with a presence flag.
func (o *Object) Lookup(key string) (any, bool) {
	f, ok := o.fields[key]
	if !ok {
		return nil, false
	}
	return f.get(), true
}

// Has reports whether key is present. It does not subscribe.
func (o *Object) Has(key string) bool {
	_, ok := o.fields[key]
	return ok
}

// Keys returns the field names in insertion order.
func (o *Object) Keys() []string {
	return slices.Clone(o.keys)
}

// Len returns the number of fields.
func (o *Object) Len() int {
	return len(o.keys)
}

// Set assigns a field. On an existing key it is the accessor write: equal
// values are ignored, anything else is stored, observed and published.
// A missing key becomes a plain field that nothing is subscribed to; use
// the package-level Set to add a reactive field.
func (o *Object) Set(key string, value any) {
	if o.frozen {
		errors.Warn("R005", "op", "assign", "key", key)
		return
	}
	if f, ok := o.fields[key]; ok {
		f.set(value)
		return
	}
	o.add(key, &field{value: value})
}

// Freeze marks the object non-extensible. Frozen objects are never
// observed and reject additions and deletions.
func (o *Object) Freeze() *Object {
	o.frozen = true
	return o
}

// IsFrozen reports whether Freeze was called.
func (o *Object) IsFrozen() bool {
	return o.frozen
}

// Observer returns the attached Observer, or nil.
func (o *Object) Observer() *Observer {
	return o.ob
}

// Raw returns a shallow map snapshot of the fields without subscribing.
func (o *Object) Raw() map[string]any {
	m := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		m[k] = o.fields[k].value
	}
	return m
}

// field is one reactive accessor. dep is nil while the field is plain.
type field struct {
	value   any
	dep     *Dep
	child   *Observer
	shallow bool
	onSet   func(value any)
}

func (f *field) get() any {
	if f.dep == nil {
		return f.value
	}
	t := currentTarget()
	if t == nil {
		return f.value
	}
	t.AddDep(f.dep)
	if f.child != nil {
		t.AddDep(f.child.dep)
		if l, ok := f.value.(*List); ok {
			dependList(t, l)
		}
	}
	return f.value
}

func (f *field) set(value any) {
	if SameValue(f.value, value) {
		return
	}
	if f.onSet != nil {
		f.onSet(value)
	}
	f.value = value
	if f.dep == nil {
		return
	}
	if !f.shallow {
		f.child = Observe(value, false)
	}
	f.dep.Notify()
}

// dependList subscribes t to the structure of every container nested in
// l, since list elements have no per-index accessor.
func dependList(t *Watcher, l *List) {
	for _, item := range l.items {
		if ob := observerOf(item); ob != nil {
			t.AddDep(ob.dep)
		}
		if nested, ok := item.(*List); ok {
			dependList(t, nested)
		}
	}
}
