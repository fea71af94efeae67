package reactive

// Traverse reads every field and element reachable from value so the
// current evaluator subscribes to all of them. Deep watchers call it after
// their getter. Cycles are broken with a visited set keyed by the
// structural Dep id; frozen containers are skipped.
func Traverse(value any) {
	seen := make(map[uint64]struct{})
	traverse(value, seen)
}

func traverse(value any, seen map[uint64]struct{}) {
	switch c := value.(type) {
	case *Object:
		if c == nil || c.frozen {
			return
		}
		if c.ob != nil {
			id := c.ob.dep.id
			if _, ok := seen[id]; ok {
				return
			}
			seen[id] = struct{}{}
		}
		for _, k := range c.Keys() {
			traverse(c.Get(k), seen)
		}
	case *List:
		if c == nil || c.frozen {
			return
		}
		if c.ob != nil {
			id := c.ob.dep.id
			if _, ok := seen[id]; ok {
				return
			}
			seen[id] = struct{}{}
		}
		for _, item := range c.Items() {
			traverse(item, seen)
		}
	}
}
