package component

import (
	"fmt"
	"sort"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/reactive"
)

func (vm *Instance) initState(propsData map[string]any) {
	vm.initProps(propsData)
	vm.initData()
	vm.initComputed()
	vm.initWatch()
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (vm *Instance) initProps(propsData map[string]any) {
	vm.props = reactive.NewObject(nil)
	if len(vm.opts.Props) == 0 {
		return
	}
	names := sortedNames(vm.opts.Props)
	values := make([]any, len(names))
	for i, key := range names {
		values[i] = vm.resolveProp(vm.opts.Props[key], key, propsData)
	}

	// Prop values come from the parent, which already observed them.
	isRoot := vm.parent == nil
	if !isRoot {
		reactive.ToggleObserving(false)
		defer reactive.ToggleObserving(true)
	}
	for i, key := range names {
		key := key
		reactive.DefineReactive(vm.props, key, values[i], reactive.OnSet(func(any) {
			if !vm.updatingProps {
				errors.WarnError(errors.New("C005").WithDetail(
					"Avoid mutating a prop directly since the value will be overwritten whenever the parent component re-renders: "+key),
					"prop", key, "trace", vm.Trace())
			}
		}))
	}
}

// resolveProp resolves the value of key from propsData, falling back to
// the declared default, and warns about missing or invalid values.
func (vm *Instance) resolveProp(def PropDef, key string, propsData map[string]any) any {
	value, ok := propsData[key]
	if !ok || value == nil {
		if def.Required && !ok {
			errors.WarnError(errors.New("C005").WithDetail(`Missing required prop: "`+key+`"`), "prop", key, "trace", vm.Trace())
		}
		switch {
		case def.DefaultFunc != nil:
			value = def.DefaultFunc(vm)
		case def.Default != nil:
			value = def.Default
		}
		reactive.Observe(value, false)
		return value
	}
	if def.Validator != nil && !def.Validator(value) {
		errors.WarnError(errors.New("C005").WithDetail(`Invalid prop: custom validator check failed for prop "`+key+`"`), "prop", key, "trace", vm.Trace())
	}
	return value
}

func (vm *Instance) initData() {
	var raw map[string]any
	if vm.opts.Data != nil {
		raw = vm.getData()
	}
	for _, key := range sortedNames(raw) {
		if _, ok := vm.opts.Props[key]; ok {
			errors.WarnError(errors.New("C005").WithDetail(`The data property "`+key+`" is already declared as a prop`), "key", key)
			delete(raw, key)
			continue
		}
		if _, ok := vm.opts.Methods[key]; ok {
			errors.WarnError(errors.New("C005").WithDetail(`Method "`+key+`" has already been defined as a data property`), "key", key)
		}
	}
	vm.data = reactive.NewObject(raw)
	reactive.Observe(vm.data, true)
}

func (vm *Instance) getData() (raw map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			errors.Handle(errors.FromPanic(r), vm, "data()")
			raw = nil
		}
	}()
	reactive.Untracked(func() {
		raw = vm.opts.Data(vm)
	})
	return raw
}

func (vm *Instance) initComputed() {
	if len(vm.opts.Computed) == 0 {
		return
	}
	vm.computed = make(map[string]*reactive.Computed[any], len(vm.opts.Computed))
	for _, key := range sortedNames(vm.opts.Computed) {
		def := vm.opts.Computed[key]
		if def.Get == nil {
			errors.WarnError(errors.New("C005").WithDetail(`Getter is missing for computed property "`+key+`"`), "key", key)
			continue
		}
		if _, ok := vm.opts.Props[key]; ok {
			errors.WarnError(errors.New("C005").WithDetail(`The computed property "`+key+`" is already defined as a prop`), "key", key)
			continue
		}
		if vm.data.Has(key) {
			errors.WarnError(errors.New("C005").WithDetail(`The computed property "`+key+`" is already defined in data`), "key", key)
			continue
		}
		get := def.Get
		vm.computed[key] = reactive.NewComputed(vm, func() any { return get(vm) },
			reactive.WithScheduler(vm.env.scheduler),
			reactive.Expression(key))
	}
}

func (vm *Instance) initWatch() {
	for _, key := range sortedNames(vm.opts.Watch) {
		for _, def := range vm.opts.Watch[key] {
			handler := def.Handler
			if handler == nil {
				continue
			}
			vm.Watch(key, func(n, o any) { handler(vm, n, o) }, WatchOptions{
				Deep:      def.Deep,
				Immediate: def.Immediate,
				Sync:      def.Sync,
			})
		}
	}
}

// Get reads key from props, data, computed properties and methods, in
// that order. A method is returned as func(args ...any) any. Reading
// registers the current evaluator as a dependent.
func (vm *Instance) Get(key string) any {
	if _, ok := vm.opts.Props[key]; ok {
		return vm.props.Get(key)
	}
	if vm.data != nil && vm.data.Has(key) {
		return vm.data.Get(key)
	}
	if c, ok := vm.computed[key]; ok {
		return c.Get()
	}
	if m, ok := vm.opts.Methods[key]; ok {
		return func(args ...any) any { return m(vm, args...) }
	}
	return nil
}

// Set assigns key. Props warn when written from inside the component.
// Computed properties call their setter. Keys missing from the root
// state are rejected with R001; declare them in Options.Data instead.
func (vm *Instance) Set(key string, value any) {
	if _, ok := vm.opts.Props[key]; ok {
		vm.props.Set(key, value)
		return
	}
	if c, ok := vm.opts.Computed[key]; ok && vm.computed[key] != nil {
		if c.Set == nil {
			errors.WarnError(errors.New("C005").WithDetail(`Computed property "`+key+`" was assigned to but it has no setter`), "key", key)
			return
		}
		c.Set(vm, value)
		return
	}
	if vm.data == nil || !vm.data.Has(key) {
		errors.Warn("R001", "op", "set", "key", key)
		return
	}
	vm.data.Set(key, value)
}

// Data returns the reactive root state object.
func (vm *Instance) Data() *reactive.Object {
	return vm.data
}

// Props returns the reactive props object.
func (vm *Instance) Props() *reactive.Object {
	return vm.props
}

// Call invokes a method.
func (vm *Instance) Call(name string, args ...any) any {
	m, ok := vm.opts.Methods[name]
	if !ok {
		errors.WarnError(errors.New("C005").WithDetail(fmt.Sprintf("Method %q is not defined", name)), "method", name)
		return nil
	}
	return m(vm, args...)
}

// WatchOptions configure Instance.Watch.
type WatchOptions struct {
	Deep      bool
	Immediate bool
	Sync      bool
}

// Watch observes expOrFn and calls cb when its value changes. expOrFn is
// a dotted path on the instance ("user.name") or a func(*Instance) any.
// It returns a function that stops the watcher.
func (vm *Instance) Watch(expOrFn any, cb func(newVal, oldVal any), opts WatchOptions) (unwatch func()) {
	var getter func() any
	var expr string
	switch e := expOrFn.(type) {
	case string:
		expr = e
		get, ok := reactive.ParsePath(e)
		if !ok {
			errors.WarnError(errors.New("W003").WithDetail(`Failed watching path: "`+e+`"`), "path", e)
			return func() {}
		}
		getter = func() any { return get(vm) }
	case func(*Instance) any:
		expr = "function"
		getter = func() any { return e(vm) }
	case func() any:
		expr = "function"
		getter = e
	default:
		errors.Warn("C005", "watch", fmt.Sprintf("%T", expOrFn))
		return func() {}
	}

	wopts := []reactive.WatcherOption{
		reactive.User(),
		reactive.Expression(expr),
		reactive.WithScheduler(vm.env.scheduler),
	}
	if opts.Deep {
		wopts = append(wopts, reactive.Deep())
	}
	if opts.Sync {
		wopts = append(wopts, reactive.Sync())
	}
	w := reactive.NewWatcher(vm, getter, cb, wopts...)
	vm.watchers = append(vm.watchers, w)

	if opts.Immediate {
		func() {
			defer errors.Recover(vm, `callback for immediate watcher "`+expr+`"`)
			cb(w.Value(), nil)
		}()
	}
	return w.Teardown
}
