//go:build wasm

package internal

// wasm runs a single goroutine at a time and has no usable goroutine id,
// so every caller shares one context.
var globalContext = &ExecutionContext{}

func GetContext() *ExecutionContext {
	return globalContext
}

func releaseContext(*ExecutionContext) {}
