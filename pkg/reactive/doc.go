// Package reactive implements fine-grained dependency tracking.
//
// State lives in Object and List containers. Once observed, every field
// read made while a Watcher evaluates subscribes that watcher to the
// field's Dep, and every effective write publishes it. Watchers are
// batched by a Scheduler and re-run together, ordered by id, on the next
// tick.
//
//	state := reactive.ObjectOf("count", 0)
//	reactive.Observe(state, true)
//	w := reactive.NewWatcher(nil, func() any { return state.Get("count") },
//		func(n, o any) { fmt.Println(o, "->", n) })
//	state.Set("count", 1)
//	reactive.Default().Tick() // prints "0 -> 1"
//
// Everything in this package is single-threaded: a reactive tree belongs
// to one goroutine. Use pkg/loop to marshal work from other goroutines.
package reactive
