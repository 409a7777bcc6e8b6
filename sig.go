package sig

import (
	"log/slog"

	"github.com/AnatoleLucet/tui/sig/internal"
)

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

// SignalID identifies a signal. Clones of a signal share its id.
type SignalID = internal.SignalID

// EffectID identifies an effect.
type EffectID = internal.EffectID

// ErrFlushLimit is returned when a flush keeps producing new work past its iteration limit.
var ErrFlushLimit = internal.ErrFlushLimit

type Signal[T any] struct {
	signal *internal.Signal
}

// NewSignal creates a shared, observable cell holding initial.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		internal.NewSignal(initial),
	}
}

// Read the current value of the signal, tracking the dependency if called from a running effect.
func (s *Signal[T]) Read() T {
	return as[T](s.signal.Read())
}

// Peek reads the current value without tracking.
func (s *Signal[T]) Peek() T {
	return as[T](s.signal.Peek())
}

// Write a new value to the signal and re-run its subscribers before returning.
// Every write notifies, even if the value didn't change.
func (s *Signal[T]) Write(v T) {
	s.signal.Write(v)
}

// Update mutates a copy of the value, stores it, then notifies like Write.
// Concurrent Update calls never lose each other's changes. fn may read the signal
// but must not call Update on it.
func (s *Signal[T]) Update(fn func(*T)) {
	s.signal.Update(func(v any) any {
		value := as[T](v)
		fn(&value)
		return value
	})
}

// Clone returns another handle on the same signal.
func (s *Signal[T]) Clone() *Signal[T] {
	return &Signal[T]{s.signal}
}

func (s *Signal[T]) ID() SignalID {
	return s.signal.ID()
}

// Subscribers lists the effects currently subscribed, in subscription order.
func (s *Signal[T]) Subscribers() []EffectID {
	return s.signal.Subscribers()
}

// Computed is a cached derived value with manual invalidation.
//
// Unlike an effect it does not track what it reads: after a source changes the
// cached value stays as is until Invalidate is called.
type Computed[T any] struct {
	computed *internal.Computed
}

// NewComputed creates a computed value. Nothing is computed until the first Read.
func NewComputed[T any](compute func() T) *Computed[T] {
	return &Computed[T]{
		internal.NewComputed(func() any {
			return compute()
		}),
	}
}

// Read returns the cached value, computing it first if dirty.
func (c *Computed[T]) Read() T {
	return as[T](c.computed.Read())
}

func (c *Computed[T]) IsDirty() bool {
	return c.computed.IsDirty()
}

// Invalidate marks the value dirty; the next Read recomputes it.
func (c *Computed[T]) Invalidate() {
	c.computed.Invalidate()
}

// Effect re-runs its function whenever a signal it read during its last run is written.
type Effect struct {
	effect *internal.Effect
}

// NewEffect creates an effect and runs it immediately.
func NewEffect(fn func()) *Effect {
	return &Effect{internal.NewEffect(fn, false)}
}

// NewLazyEffect creates an effect that doesn't run until Run is called.
func NewLazyEffect(fn func()) *Effect {
	return &Effect{internal.NewEffect(fn, true)}
}

// Run the effect now, rebuilding its dependencies from scratch.
// Does nothing if the effect is stopped or already running.
func (e *Effect) Run() { e.effect.Run() }

// Stop unsubscribes the effect from all its signals and runs its cleanups.
func (e *Effect) Stop() { e.effect.Stop() }

// Resume reactivates a stopped effect. It doesn't re-run it: tracking restarts on the next Run.
func (e *Effect) Resume() { e.effect.Resume() }

func (e *Effect) IsActive() bool { return e.effect.IsActive() }

// Dispose stops the effect permanently. Owners call it for the effects they own.
func (e *Effect) Dispose() { e.effect.Dispose() }

// Close disposes the effect, so that it can be released with defer.
func (e *Effect) Close() error {
	e.effect.Dispose()
	return nil
}

func (e *Effect) ID() EffectID { return e.effect.ID() }

// Runs returns how many times the effect's function executed.
func (e *Effect) Runs() uint64 { return e.effect.Runs() }

// Dependencies returns the signals read by the latest run, sorted by id.
func (e *Effect) Dependencies() []SignalID { return e.effect.Dependencies() }

// Batch defers the effects triggered by the writes in fn until fn returns,
// running each of them once. It uses the default runtime.
func Batch(fn func()) error {
	return internal.DefaultRuntime().Batch(fn)
}

// Untrack runs the given function without tracking any reactive dependencies.
func Untrack[T any](fn func() T) T {
	var result T
	internal.Untrack(func() { result = fn() })
	return result
}

// OnCleanup registers a function to be called when the current owner is disposed.
// Inside an effect, that is before its next run and when it stops.
func OnCleanup(fn func()) {
	if owner := internal.CurrentOwner(); owner != nil {
		owner.OnCleanup(fn)
	}
}

// SetLogger sets the logger used for runtime diagnostics. Logs are discarded by default.
func SetLogger(l *slog.Logger) {
	internal.SetLogger(l)
}

type Owner struct {
	owner *internal.Owner
}

// NewOwner creates a new reactive owner.
// An owner manages the lifecycle of reactive nodes created within its context.
func NewOwner() *Owner {
	parent := internal.CurrentOwner()
	o := internal.NewOwner(parent)

	if parent != nil {
		parent.Add(o)
	}

	return &Owner{o}
}

// Run a function within the context of this owner.
// Each reactive node created within the function will be a child of this owner,
// and will be disposed when owner.Dispose() is called on this owner.
func (o *Owner) Run(fn func() error) error { return o.owner.Run(fn) }

// Dispose this owner and all its children.
func (o *Owner) Dispose() { o.owner.Dispose() }

// Add a cleanup function to be called ONCE when the owner is disposed.
func (o *Owner) OnCleanup(fn func()) { o.owner.OnCleanup(fn) }

// Add a function to be called when the owner is disposed (each time Dispose is called).
func (o *Owner) OnDispose(fn func()) { o.owner.OnDispose(fn) }

// Add a function to be called when a panic occurs within this owner.
// If no error listener is registered, the panic will propagate as usual.
func (o *Owner) OnError(fn func(any)) { o.owner.OnError(fn) }
