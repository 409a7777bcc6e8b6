package internal

// EffectQueue is a FIFO of callbacks waiting for the next flush.
// It is not safe for concurrent use; the runtime guards it.
type EffectQueue struct {
	effects []func()
}

func NewEffectQueue() *EffectQueue {
	return &EffectQueue{
		effects: make([]func(), 0),
	}
}

func (q *EffectQueue) Enqueue(fn func()) {
	q.effects = append(q.effects, fn)
}

// Prepend puts fns back at the front of the queue, ahead of newer work.
func (q *EffectQueue) Prepend(fns []func()) {
	q.effects = append(fns[:len(fns):len(fns)], q.effects...)
}

// Drain returns the queued callbacks and leaves the queue empty.
func (q *EffectQueue) Drain() []func() {
	effects := q.effects
	q.effects = make([]func(), 0)

	return effects
}

func (q *EffectQueue) Len() int {
	return len(q.effects)
}

// SettledQueue holds callbacks to run once the next flush completes.
type SettledQueue struct {
	callbacks []func()
}

func NewSettledQueue() *SettledQueue {
	return &SettledQueue{
		callbacks: make([]func(), 0),
	}
}

func (q *SettledQueue) Enqueue(fn func()) {
	q.callbacks = append(q.callbacks, fn)
}

func (q *SettledQueue) Drain() []func() {
	callbacks := q.callbacks
	q.callbacks = make([]func(), 0)

	return callbacks
}
