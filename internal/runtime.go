package internal

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
)

// DefaultMaxFlushIterations bounds the number of generations a single Flush drains.
const DefaultMaxFlushIterations = 100

var ErrFlushLimit = errors.New("sig: flush iteration limit exceeded")

// Runtime is the explicit scheduler: a set of dirty signals and a FIFO of
// callbacks that run on Flush.
type Runtime struct {
	mu sync.Mutex

	dirty        map[SignalID]struct{}
	pending      map[EffectID]struct{} // effects already queued by a batched write
	batcher      *Batcher
	effectQueue  *EffectQueue
	settledQueue *SettledQueue

	// held for the whole of a flush, so flushes from different goroutines take turns
	flushMu sync.Mutex

	maxIterations int
	logger        *slog.Logger
}

type RuntimeConfig struct {
	MaxIterations int
	Logger        *slog.Logger
}

func NewRuntime(cfg RuntimeConfig) *Runtime {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxFlushIterations
	}

	return &Runtime{
		dirty:         make(map[SignalID]struct{}),
		pending:       make(map[EffectID]struct{}),
		batcher:       NewBatcher(),
		effectQueue:   NewEffectQueue(),
		settledQueue:  NewSettledQueue(),
		maxIterations: cfg.MaxIterations,
		logger:        cfg.Logger,
	}
}

var DefaultRuntime = sync.OnceValue(func() *Runtime {
	return NewRuntime(RuntimeConfig{})
})

func (r *Runtime) MarkDirty(id SignalID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dirty[id] = struct{}{}
}

func (r *Runtime) ScheduleEffect(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.effectQueue.Enqueue(fn)
}

// scheduleRun queues a run of e unless one is already queued.
func (r *Runtime) scheduleRun(e *Effect) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pending[e.id]; ok {
		return
	}
	r.pending[e.id] = struct{}{}

	r.effectQueue.Enqueue(func() {
		r.mu.Lock()
		delete(r.pending, e.id)
		r.mu.Unlock()

		e.Run()
	})
}

// OnSettled registers fn to run once the next flush has drained.
func (r *Runtime) OnSettled(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settledQueue.Enqueue(fn)
}

func (r *Runtime) HasPending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.dirty) > 0 || r.effectQueue.Len() > 0
}

func (r *Runtime) IsBatching() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.batcher.IsBatching()
}

func (r *Runtime) DirtySignals() []SignalID {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]SignalID, 0, len(r.dirty))
	for id := range r.dirty {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}

// Flush runs every queued callback in FIFO order. Callbacks queued while
// flushing run in the same call, one generation at a time, until the queue is
// empty or the iteration limit is hit. In the latter case the leftover work is
// dropped and ErrFlushLimit is returned.
//
// A Flush called from inside a flushing callback returns immediately; the
// outer call drains whatever it queued. A Flush from another goroutine waits
// for the running one to finish, then drains what is left.
func (r *Runtime) Flush() error {
	ctx := GetContext()
	if ctx.IsFlushing(r) {
		releaseContext(ctx)
		return nil
	}

	r.flushMu.Lock()
	defer r.flushMu.Unlock()

	observeFlush()

	var err error
	ctx.RunWithFlush(r, func() { err = r.drain() })
	return err
}

func (r *Runtime) drain() error {
	for i := 0; ; i++ {
		r.mu.Lock()
		generation := r.effectQueue.Drain()

		if len(generation) == 0 {
			clear(r.dirty)
			settled := r.settledQueue.Drain()
			r.mu.Unlock()

			for _, fn := range settled {
				fn()
			}
			return nil
		}

		if i >= r.maxIterations {
			dropped := len(generation)
			clear(r.dirty)
			clear(r.pending)
			r.mu.Unlock()

			observeFlushLimit()
			r.log().Warn("sig: flush did not settle, dropping pending work",
				"iterations", r.maxIterations,
				"dropped", dropped,
			)
			return ErrFlushLimit
		}
		r.mu.Unlock()

		r.runGeneration(generation)
	}
}

func (r *Runtime) runGeneration(generation []func()) {
	// on panic, put what didn't run back in front so nothing is lost
	defer func() {
		if len(generation) > 0 {
			r.mu.Lock()
			r.effectQueue.Prepend(generation)
			r.mu.Unlock()
		}
	}()

	for len(generation) > 0 {
		fn := generation[0]
		generation = generation[1:]

		observeFlushCallback()
		fn()
	}
}

func (r *Runtime) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}

	return Logger()
}
