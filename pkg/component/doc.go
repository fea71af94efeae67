// Package component connects the reactive core to the patcher.
//
// An Instance owns reactive state (props, data, computed properties and
// watchers) and a render watcher. The render watcher runs the component's
// Render function, records what it read and patches the result against
// the previous tree; any later write to that state queues one re-render
// on the next flush.
//
// # Defining components
//
//	counter := &component.Options{
//	    Name: "Counter",
//	    Data: func(vm *component.Instance) map[string]any {
//	        return map[string]any{"count": 0}
//	    },
//	    Render: func(vm *component.Instance, h component.CreateElement) *vdom.VNode {
//	        return h("button", vdom.OnClick(func(...any) {
//	            vm.Set("count", vm.Get("count").(int)+1)
//	        }), fmt.Sprint(vm.Get("count")))
//	    },
//	}
//
//	app := component.NewApp(counter, component.InstanceOptions{Ops: doc})
//	app.MountInto(root)
//
// Options compose with MergeOptions, Mixins and Extends. Ctor.Extend
// derives constructors; Component and Directive register assets globally
// or per constructor.
//
// # Component tree
//
// Child components are created by placeholders that CreateElement builds
// for registered names, *Options, *Ctor and *AsyncComponent tags. The
// patcher drives them through the placeholder's Init, Prepatch, Insert
// and Destroy hooks. KeepAlive caches switched-out children instead of
// destroying them.
//
// # Errors
//
// Panics in render functions, hooks, watchers and event handlers are
// recovered and offered to the ErrorCaptured hooks of every ancestor
// before reaching the global handler of internal/errors.
//
// # Threading
//
// A tree belongs to the goroutine driving its scheduler. Work from other
// goroutines goes through Instance.Post, typically backed by pkg/loop.
package component
