//go:build !wasm

package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

var contexts sync.Map // goroutine id -> *ExecutionContext

// GetContext returns the calling goroutine's execution context, creating it if needed.
func GetContext() *ExecutionContext {
	gid := goid.Get()

	if ctx, ok := contexts.Load(gid); ok {
		return ctx.(*ExecutionContext)
	}

	ctx := &ExecutionContext{}
	contexts.Store(gid, ctx)
	return ctx
}

// releaseContext forgets an idle context so finished goroutines don't leak entries.
func releaseContext(ctx *ExecutionContext) {
	if ctx.idle() {
		contexts.Delete(goid.Get())
	}
}
