package internal

import "slices"

// ExecutionContext is the reactive state of a single goroutine.
// It is only ever touched by the goroutine it belongs to.
type ExecutionContext struct {
	// effects currently executing on this goroutine, innermost last.
	// reads register into the innermost one.
	effects []*Effect

	// > 0 while inside Untrack
	untracked int

	// runtimes batching on this goroutine, innermost last.
	// signal writes are deferred to the innermost one.
	batches []*Runtime

	// runtimes flushing on this goroutine
	flushing []*Runtime

	// owner of the reactive nodes created on this goroutine
	owner *Owner
}

func (ctx *ExecutionContext) idle() bool {
	return len(ctx.effects) == 0 &&
		len(ctx.batches) == 0 &&
		len(ctx.flushing) == 0 &&
		ctx.untracked == 0 &&
		ctx.owner == nil
}

// CurrentEffect returns the effect that should receive dependency registrations, if any.
func (ctx *ExecutionContext) CurrentEffect() *Effect {
	if ctx.untracked > 0 || len(ctx.effects) == 0 {
		return nil
	}

	return ctx.effects[len(ctx.effects)-1]
}

// CurrentBatch returns the innermost runtime batching on this goroutine, if any.
func (ctx *ExecutionContext) CurrentBatch() *Runtime {
	if len(ctx.batches) == 0 {
		return nil
	}

	return ctx.batches[len(ctx.batches)-1]
}

// IsBatching reports whether r already has a batch open on this goroutine.
func (ctx *ExecutionContext) IsBatching(r *Runtime) bool {
	return slices.Contains(ctx.batches, r)
}

// IsFlushing reports whether r is being flushed by this goroutine.
func (ctx *ExecutionContext) IsFlushing(r *Runtime) bool {
	return slices.Contains(ctx.flushing, r)
}

func (ctx *ExecutionContext) RunWithEffect(e *Effect, fn func()) {
	prevOwner := ctx.owner
	prevUntracked := ctx.untracked

	ctx.effects = append(ctx.effects, e)
	ctx.owner = e.scope
	ctx.untracked = 0 // an effect nested in Untrack still tracks its own reads

	defer func() {
		ctx.effects[len(ctx.effects)-1] = nil
		ctx.effects = ctx.effects[:len(ctx.effects)-1]
		ctx.owner = prevOwner
		ctx.untracked = prevUntracked
		releaseContext(ctx)
	}()

	fn()
}

func (ctx *ExecutionContext) RunWithOwner(owner *Owner, fn func()) {
	prev := ctx.owner
	ctx.owner = owner

	defer func() {
		ctx.owner = prev
		releaseContext(ctx)
	}()

	fn()
}

func (ctx *ExecutionContext) RunUntracked(fn func()) {
	ctx.untracked++

	defer func() {
		ctx.untracked--
		releaseContext(ctx)
	}()

	fn()
}

func (ctx *ExecutionContext) RunWithBatch(r *Runtime, fn func()) {
	ctx.batches = append(ctx.batches, r)

	defer func() {
		ctx.batches[len(ctx.batches)-1] = nil
		ctx.batches = ctx.batches[:len(ctx.batches)-1]
		releaseContext(ctx)
	}()

	fn()
}

func (ctx *ExecutionContext) RunWithFlush(r *Runtime, fn func()) {
	ctx.flushing = append(ctx.flushing, r)

	defer func() {
		ctx.flushing[len(ctx.flushing)-1] = nil
		ctx.flushing = ctx.flushing[:len(ctx.flushing)-1]
		releaseContext(ctx)
	}()

	fn()
}

// CurrentOwner returns the owner of nodes created on the calling goroutine.
func CurrentOwner() *Owner {
	ctx := GetContext()
	defer releaseContext(ctx)

	return ctx.owner
}

// Untrack runs fn without registering any dependency.
func Untrack(fn func()) {
	GetContext().RunUntracked(fn)
}
