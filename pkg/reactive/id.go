package reactive

import "sync/atomic"

var (
	// depIDCounter is the source of Dep ids.
	depIDCounter uint64

	// watcherIDCounter is the source of Watcher ids. Watcher ids order the
	// scheduler queue, so a parent (always constructed first) sorts before
	// its children.
	watcherIDCounter uint64
)

func nextDepID() uint64 {
	return atomic.AddUint64(&depIDCounter, 1)
}

func nextWatcherID() uint64 {
	return atomic.AddUint64(&watcherIDCounter, 1)
}
