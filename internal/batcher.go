package internal

type Batcher struct {
	// open batches on this runtime, across all goroutines
	depth int
}

func NewBatcher() *Batcher {
	return &Batcher{
		depth: 0,
	}
}

func (b *Batcher) IsBatching() bool {
	return b.depth > 0
}

func (b *Batcher) enter() {
	b.depth++
}

func (b *Batcher) leave() {
	b.depth--
}

// Batch runs fn in a batch scope on the calling goroutine: signal writes made
// inside it mark dirty and schedule their subscribers instead of running them.
// The runtime flushes when the calling goroutine's outermost batch on r
// completes, whatever other goroutines are batching on r at the time.
func (r *Runtime) Batch(fn func()) error {
	ctx := GetContext()
	outermost := !ctx.IsBatching(r)

	r.mu.Lock()
	r.batcher.enter()
	r.mu.Unlock()

	func() {
		defer func() {
			r.mu.Lock()
			r.batcher.leave()
			r.mu.Unlock()
		}()

		ctx.RunWithBatch(r, fn)
	}()

	if !outermost {
		return nil
	}

	return r.Flush()
}
