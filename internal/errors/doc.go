// Package errors provides coded diagnostics and the error sink for reactor.
//
// Every recoverable failure in the reactive core and the patch engine ends
// up here, in one of two shapes:
//
//   - Warnings (Warn): mutation-contract violations, duplicate keys,
//     hydration mismatches. They are logged through slog (or a handler
//     installed with SetWarnHandler) and execution continues.
//   - Errors (Handle): panics and errors raised by watcher getters,
//     callbacks, render functions and lifecycle hooks. Handle offers the
//     error to each ancestor Scope (components implement CaptureError),
//     then to the global handler installed with SetGlobalHandler, and
//     finally logs it.
//
// # Error Codes
//
// Each code maps to a category, a short message and a detail:
//
//	err := errors.New("S001").WithComponent("<Root> > <Counter>")
//	fmt.Println(err.Format())
//
// Codes are grouped by prefix: R (reactive), W (watcher), S (scheduler),
// V (patch and hydration), C (component), P (protocol), F (config).
package errors
