package reactive

import (
	"slices"
	"sort"

	"github.com/vango-dev/reactor/internal/errors"
)

// List is a reactive ordered collection. Elements have no per-index
// accessor; reads subscribe through the field holding the list, and every
// mutator publishes the list's structural Dep. Index writes go through Set
// so they are observable.
type List struct {
	items  []any
	ob     *Observer
	frozen bool
}

// NewList creates a List holding items.
func NewList(items ...any) *List {
	return &List{items: slices.Clone(items)}
}

// Len returns the number of elements.
func (l *List) Len() int {
	return len(l.items)
}

// At returns the element at i, or nil when out of range.
func (l *List) At(i int) any {
	if i < 0 || i >= len(l.items) {
		return nil
	}
	return l.items[i]
}

// Items returns a copy of the elements.
func (l *List) Items() []any {
	return slices.Clone(l.items)
}

// Freeze marks the list immutable. Frozen lists are never observed and
// every mutator becomes a no-op.
func (l *List) Freeze() *List {
	l.frozen = true
	return l
}

// IsFrozen reports whether Freeze was called.
func (l *List) IsFrozen() bool {
	return l.frozen
}

// Observer returns the attached Observer, or nil.
func (l *List) Observer() *Observer {
	return l.ob
}

// Push appends items and returns the new length.
func (l *List) Push(items ...any) int {
	if l.rejectFrozen("push") {
		return len(l.items)
	}
	l.items = append(l.items, items...)
	l.changed(items)
	return len(l.items)
}

// Pop removes and returns the last element.
func (l *List) Pop() any {
	if l.rejectFrozen("pop") || len(l.items) == 0 {
		return nil
	}
	last := l.items[len(l.items)-1]
	l.items[len(l.items)-1] = nil
	l.items = l.items[:len(l.items)-1]
	l.changed(nil)
	return last
}

// Shift removes and returns the first element.
func (l *List) Shift() any {
	if l.rejectFrozen("shift") || len(l.items) == 0 {
		return nil
	}
	first := l.items[0]
	l.items = slices.Delete(l.items, 0, 1)
	l.changed(nil)
	return first
}

// Unshift prepends items and returns the new length.
func (l *List) Unshift(items ...any) int {
	if l.rejectFrozen("unshift") {
		return len(l.items)
	}
	l.items = slices.Insert(l.items, 0, items...)
	l.changed(items)
	return len(l.items)
}

// Splice removes deleteCount elements at start, inserts items in their
// place and returns the removed elements. A negative start counts from the
// end; both arguments are clamped to the list bounds.
func (l *List) Splice(start, deleteCount int, items ...any) []any {
	if l.rejectFrozen("splice") {
		return nil
	}
	n := len(l.items)
	if start < 0 {
		start = max(n+start, 0)
	}
	start = min(start, n)
	deleteCount = min(max(deleteCount, 0), n-start)

	removed := slices.Clone(l.items[start : start+deleteCount])
	l.items = slices.Replace(l.items, start, start+deleteCount, items...)
	l.changed(items)
	return removed
}

// Sort orders the elements by less. The sort is stable.
func (l *List) Sort(less func(a, b any) bool) {
	if l.rejectFrozen("sort") {
		return
	}
	sort.SliceStable(l.items, func(i, j int) bool {
		return less(l.items[i], l.items[j])
	})
	l.changed(nil)
}

// Reverse reverses the elements in place.
func (l *List) Reverse() {
	if l.rejectFrozen("reverse") {
		return
	}
	slices.Reverse(l.items)
	l.changed(nil)
}

func (l *List) rejectFrozen(op string) bool {
	if l.frozen {
		errors.Warn("R005", "op", op)
		return true
	}
	return false
}

// changed observes inserted elements and publishes the structural Dep.
func (l *List) changed(inserted []any) {
	if l.ob == nil {
		return
	}
	if len(inserted) > 0 {
		l.ob.observeItems(inserted)
	}
	l.ob.dep.Notify()
}

// setIndex grows the list when i is past the end, then replaces index i.
func (l *List) setIndex(i int, value any) {
	if i >= len(l.items) {
		l.items = append(l.items, make([]any, i-len(l.items))...)
	}
	l.Splice(i, 1, value)
}
