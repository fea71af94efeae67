package reactive

import (
	"github.com/vango-dev/reactor/internal/errors"
)

// Observer is attached to a container once it is made reactive. It owns
// the container's structural Dep, published on additions, deletions and
// list mutations.
type Observer struct {
	value   any
	dep     *Dep
	vmCount int
}

// Dep returns the structural Dep.
func (ob *Observer) Dep() *Dep {
	return ob.dep
}

// Value returns the observed container.
func (ob *Observer) Value() any {
	return ob.value
}

// VMCount returns how many component instances use the container as root
// state.
func (ob *Observer) VMCount() int {
	return ob.vmCount
}

// ReleaseRoot undoes one asRoot observation. Called when an instance that
// owns the container as root state is destroyed.
func (ob *Observer) ReleaseRoot() {
	if ob.vmCount > 0 {
		ob.vmCount--
	}
}

// Observe attaches an Observer to value and returns it. Values that are
// not containers (primitives, structs, virtual nodes) yield nil, as do
// frozen containers. An already observed container returns its existing
// Observer. When asRoot is set the container is counted as component root
// state, which forbids adding or deleting its fields afterwards.
func Observe(value any, asRoot bool) *Observer {
	ob := observerOf(value)
	if ob == nil {
		ob = newObserver(value)
	}
	if asRoot && ob != nil {
		ob.vmCount++
	}
	return ob
}

// observerOf returns the Observer already attached to value.
func observerOf(value any) *Observer {
	switch c := value.(type) {
	case *Object:
		if c != nil {
			return c.ob
		}
	case *List:
		if c != nil {
			return c.ob
		}
	}
	return nil
}

func newObserver(value any) *Observer {
	if !shouldObserve() {
		return nil
	}
	switch c := value.(type) {
	case *Object:
		if c == nil {
			return nil
		}
		if c.frozen {
			errors.Warn("R002")
			return nil
		}
		ob := &Observer{value: c, dep: NewDep()}
		c.ob = ob
		ob.walk(c)
		return ob
	case *List:
		if c == nil {
			return nil
		}
		if c.frozen {
			errors.Warn("R002")
			return nil
		}
		ob := &Observer{value: c, dep: NewDep()}
		c.ob = ob
		ob.observeItems(c.items)
		return ob
	}
	return nil
}

// walk converts every field of o into a reactive accessor.
func (ob *Observer) walk(o *Object) {
	for _, k := range o.keys {
		makeReactive(o.fields[k], o.fields[k].value)
	}
}

func (ob *Observer) observeItems(items []any) {
	for _, item := range items {
		Observe(item, false)
	}
}

// FieldOption configures DefineReactive.
type FieldOption func(*field)

// Shallow stores the value without observing it.
func Shallow() FieldOption {
	return func(f *field) {
		f.shallow = true
	}
}

// OnSet installs a hook that runs before every effective write. Props use
// it to warn about mutation from inside the child.
func OnSet(fn func(value any)) FieldOption {
	return func(f *field) {
		f.onSet = fn
	}
}

// DefineReactive installs a reactive accessor for key on obj holding
// value, replacing any existing field. Reads subscribe the current
// evaluator to the field, to the structure of a container value and, for
// lists, to every nested container. Writes that are not SameValue store,
// observe and publish.
func DefineReactive(obj *Object, key string, value any, opts ...FieldOption) {
	f := &field{}
	for _, opt := range opts {
		opt(f)
	}
	makeReactive(f, value)
	if existing, ok := obj.fields[key]; ok {
		*existing = *f
		return
	}
	obj.add(key, f)
}

func makeReactive(f *field, value any) {
	f.value = value
	if f.dep == nil {
		f.dep = NewDep()
	}
	if !f.shallow {
		f.child = Observe(value, false)
	}
}

// Set adds or replaces a property on a reactive container and publishes
// the change. For a List, key must be an int index; writing past the end
// grows the list. For an Object, key must be a string; a new key on an
// observed object becomes a reactive field and the object's structural
// Dep is published. Root state, frozen containers and non-containers are
// rejected with a warning and left untouched.
func Set(target any, key any, value any) error {
	switch t := target.(type) {
	case *List:
		i, ok := key.(int)
		if !ok || i < 0 {
			errors.Warn("R004", "key", key)
			return ErrInvalidIndex
		}
		if t.frozen {
			errors.Warn("R005", "op", "set")
			return ErrFrozen
		}
		t.setIndex(i, value)
		return nil

	case *Object:
		k, ok := key.(string)
		if !ok {
			errors.Warn("R003", "key", key)
			return ErrNotContainer
		}
		if t.frozen {
			errors.Warn("R005", "op", "set", "key", k)
			return ErrFrozen
		}
		if f, exists := t.fields[k]; exists {
			f.set(value)
			return nil
		}
		ob := t.ob
		if ob != nil && ob.vmCount > 0 {
			errors.Warn("R001", "op", "set", "key", k)
			return ErrRootState
		}
		if ob == nil {
			t.add(k, &field{value: value})
			return nil
		}
		DefineReactive(t, k, value)
		ob.dep.Notify()
		return nil
	}
	errors.Warn("R003", "op", "set")
	return ErrNotContainer
}

// Delete removes a property and publishes the change. Deleting a missing
// key or an out-of-range index is a silent no-op.
func Delete(target any, key any) error {
	switch t := target.(type) {
	case *List:
		i, ok := key.(int)
		if !ok {
			errors.Warn("R004", "key", key)
			return ErrInvalidIndex
		}
		if i < 0 || i >= len(t.items) {
			return nil
		}
		if t.frozen {
			errors.Warn("R005", "op", "delete")
			return ErrFrozen
		}
		t.Splice(i, 1)
		return nil

	case *Object:
		k, ok := key.(string)
		if !ok {
			errors.Warn("R003", "key", key)
			return ErrNotContainer
		}
		ob := t.ob
		if ob != nil && ob.vmCount > 0 {
			errors.Warn("R001", "op", "delete", "key", k)
			return ErrRootState
		}
		if t.frozen {
			errors.Warn("R005", "op", "delete", "key", k)
			return ErrFrozen
		}
		if !t.Has(k) {
			return nil
		}
		t.remove(k)
		if ob != nil {
			ob.dep.Notify()
		}
		return nil
	}
	errors.Warn("R003", "op", "delete")
	return ErrNotContainer
}
