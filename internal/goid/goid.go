// Package goid identifies the calling goroutine.
package goid

import "runtime"

// ID returns the current goroutine's id, parsed from the runtime stack
// header ("goroutine <id> [...]").
func ID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}
