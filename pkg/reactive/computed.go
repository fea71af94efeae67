package reactive

// Computed is a cached derived value. It re-evaluates only when read
// after one of its dependencies changed, and readers depend on its
// dependencies rather than on the Computed itself.
type Computed[T any] struct {
	w *Watcher
}

// NewComputed creates a lazily evaluated derived value.
func NewComputed[T any](owner Scope, fn func() T, opts ...WatcherOption) *Computed[T] {
	opts = append(opts, Lazy())
	w := NewWatcher(owner, func() any { return fn() }, nil, opts...)
	return &Computed[T]{w: w}
}

// Get returns the current value, recomputing it if dirty, and subscribes
// the current evaluator to the computation's dependencies.
func (c *Computed[T]) Get() T {
	if c.w.dirty {
		c.w.Evaluate()
	}
	c.w.Depend()
	v, _ := c.w.value.(T)
	return v
}

// Watcher returns the underlying lazy watcher.
func (c *Computed[T]) Watcher() *Watcher {
	return c.w
}
