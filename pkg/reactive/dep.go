package reactive

import "slices"

// Subscriber is notified by a Dep when the state it publishes changes.
type Subscriber interface {
	ID() uint64
	Update()
}

// Dep is a publish point: a deduplicated set of subscribers interested in
// one reactive field or one container's structure.
type Dep struct {
	id   uint64
	subs []Subscriber
}

// NewDep creates a Dep with a fresh id.
func NewDep() *Dep {
	return &Dep{id: nextDepID()}
}

// ID returns the unique identifier for this Dep.
func (d *Dep) ID() uint64 {
	return d.id
}

// AddSub subscribes s. Subscribing twice is a no-op.
func (d *Dep) AddSub(s Subscriber) {
	if s == nil {
		return
	}
	sid := s.ID()
	for _, existing := range d.subs {
		if existing.ID() == sid {
			return
		}
	}
	d.subs = append(d.subs, s)
}

// RemoveSub unsubscribes s.
func (d *Dep) RemoveSub(s Subscriber) {
	if s == nil {
		return
	}
	sid := s.ID()
	for i, existing := range d.subs {
		if existing.ID() == sid {
			d.subs = slices.Delete(d.subs, i, i+1)
			return
		}
	}
}

// Depend registers this Dep with the watcher currently evaluating, if any.
func (d *Dep) Depend() {
	if t := currentTarget(); t != nil {
		t.AddDep(d)
	}
}

// Notify tells every subscriber that the published state changed.
// Subscribers are snapshotted first so subscriptions made while notifying
// do not disturb the dispatch in flight.
func (d *Dep) Notify() {
	subs := slices.Clone(d.subs)
	for _, s := range subs {
		s.Update()
	}
}

// Len returns the number of subscribers.
func (d *Dep) Len() int {
	return len(d.subs)
}
