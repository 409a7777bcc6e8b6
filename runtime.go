package sig

import (
	"log/slog"

	"github.com/AnatoleLucet/tui/sig/internal"
)

// DefaultMaxFlushIterations is the number of generations Flush drains before giving up.
const DefaultMaxFlushIterations = internal.DefaultMaxFlushIterations

// Runtime is the explicit, batched counterpart of the synchronous Write/Run path.
// Writes made inside Batch mark their signal dirty and queue their subscribers,
// which run once on Flush.
type Runtime struct {
	runtime *internal.Runtime
}

type RuntimeOption func(*internal.RuntimeConfig)

// WithMaxFlushIterations caps how many generations of queued work a single Flush drains.
func WithMaxFlushIterations(n int) RuntimeOption {
	return func(c *internal.RuntimeConfig) {
		c.MaxIterations = n
	}
}

// WithRuntimeLogger overrides the package logger for this runtime.
func WithRuntimeLogger(l *slog.Logger) RuntimeOption {
	return func(c *internal.RuntimeConfig) {
		c.Logger = l
	}
}

func NewRuntime(opts ...RuntimeOption) *Runtime {
	var cfg internal.RuntimeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Runtime{internal.NewRuntime(cfg)}
}

// MarkDirty records id as dirty without running anything.
func (r *Runtime) MarkDirty(id SignalID) { r.runtime.MarkDirty(id) }

// ScheduleEffect queues fn for the next Flush.
func (r *Runtime) ScheduleEffect(fn func()) { r.runtime.ScheduleEffect(fn) }

// OnSettled registers fn to run once, after the next Flush drained its queue.
func (r *Runtime) OnSettled(fn func()) { r.runtime.OnSettled(fn) }

// HasPending reports whether there are dirty signals or queued callbacks.
func (r *Runtime) HasPending() bool { return r.runtime.HasPending() }

// DirtySignals returns the signals marked dirty since the last Flush, sorted by id.
func (r *Runtime) DirtySignals() []SignalID { return r.runtime.DirtySignals() }

// Flush runs every queued callback in FIFO order, including the ones queued
// while flushing, then clears the dirty set.
// It returns ErrFlushLimit if the work didn't settle within the iteration limit;
// what was left is dropped.
// Called from a flushing callback it returns nil at once. Called while another
// goroutine is flushing, it waits for that flush and then drains what is left.
func (r *Runtime) Flush() error { return r.runtime.Flush() }

// Batch runs fn, deferring the effects triggered by its writes on this
// goroutine to a single Flush when the goroutine's outermost batch returns.
// Batches open on other goroutines don't delay it.
func (r *Runtime) Batch(fn func()) error { return r.runtime.Batch(fn) }

// IsBatching reports whether any goroutine has a batch open on r.
func (r *Runtime) IsBatching() bool { return r.runtime.IsBatching() }
