package errors

import (
	"log/slog"
	"sync"
)

// Scope is a node in an error-capturing hierarchy, typically a component
// instance. Errors raised inside a scope are offered to each ancestor
// before reaching the global handler.
type Scope interface {
	// ParentScope returns the enclosing scope, or nil at the root.
	ParentScope() Scope

	// CaptureError offers err (raised in origin) to this scope.
	// Returning true stops further propagation.
	CaptureError(err error, origin Scope, info string) bool
}

// Tracer is implemented by scopes that can describe their position in the
// tree for diagnostics.
type Tracer interface {
	Trace() string
}

// GlobalHandler receives every error that no scope captured.
type GlobalHandler func(err error, scope Scope, info string)

// WarnHandler receives developer warnings.
type WarnHandler func(e *Error, attrs ...any)

var (
	handlerMu     sync.RWMutex
	globalHandler GlobalHandler
	warnHandler   WarnHandler
	logger        = slog.Default().With("component", "reactor")
)

// SetGlobalHandler installs the user-overridable global error handler and
// returns the previous one. Pass nil to restore last-resort logging.
func SetGlobalHandler(h GlobalHandler) GlobalHandler {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	prev := globalHandler
	globalHandler = h
	return prev
}

// SetWarnHandler installs the warning handler and returns the previous one.
// Pass nil to restore logging through slog.
func SetWarnHandler(h WarnHandler) WarnHandler {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	prev := warnHandler
	warnHandler = h
	return prev
}

// SetLogger replaces the logger used for warnings and last-resort errors.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	handlerMu.Lock()
	defer handlerMu.Unlock()
	logger = l
}

func handlers() (GlobalHandler, WarnHandler, *slog.Logger) {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return globalHandler, warnHandler, logger
}

// Warn reports a developer warning for a registered code. Warnings never
// interrupt execution.
func Warn(code string, attrs ...any) {
	WarnError(New(code), attrs...)
}

// WarnError reports an already constructed warning.
func WarnError(e *Error, attrs ...any) {
	_, wh, l := handlers()
	if wh != nil {
		wh(e, attrs...)
		return
	}
	args := append([]any{"code", e.Code}, attrs...)
	if e.Component != "" {
		args = append(args, "trace", e.Component)
	}
	l.Warn(e.Message, args...)
}

// Handle routes err raised inside scope: every ancestor is offered the
// error first, then the global handler, then the log.
func Handle(err error, scope Scope, info string) {
	if err == nil {
		return
	}
	if scope != nil {
		for cur := scope.ParentScope(); cur != nil; cur = cur.ParentScope() {
			if cur.CaptureError(err, scope, info) {
				return
			}
		}
	}
	HandleGlobal(err, scope, info)
}

// HandleGlobal skips scope propagation and hands err straight to the global
// handler. A panicking global handler is logged, together with the
// original error.
func HandleGlobal(err error, scope Scope, info string) {
	gh, _, _ := handlers()
	if gh != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logError(FromPanic(r), nil, "global error handler")
					logError(err, scope, info)
				}
			}()
			gh(err, scope, info)
		}()
		return
	}
	logError(err, scope, info)
}

// Recover is a helper for deferred panic recovery inside a scope.
// Usage: defer errors.Recover(vm, "render")
func Recover(scope Scope, info string) {
	if r := recover(); r != nil {
		Handle(FromPanic(r), scope, info)
	}
}

// RecoverAs is Recover with the panic wrapped in the registered error
// code.
func RecoverAs(code string, scope Scope, info string) {
	if r := recover(); r != nil {
		Handle(New(code).Wrap(FromPanic(r)), scope, info)
	}
}

func logError(err error, scope Scope, info string) {
	_, _, l := handlers()
	args := []any{"error", err, "info", info}
	if t, ok := scope.(Tracer); ok {
		args = append(args, "trace", t.Trace())
	}
	l.Error("error in "+info, args...)
}
