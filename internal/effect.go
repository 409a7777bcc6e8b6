package internal

import (
	"slices"
	"sync"
	"sync/atomic"
)

type Effect struct {
	id EffectID
	fn func()

	// guards the fields below. lock order is effect -> signal, never the reverse.
	mu sync.Mutex

	active   bool
	running  bool
	disposed bool

	// signals read by the current (or last) run
	deps []*Signal

	// signals read by the previous run, kept subscribed until the current run settles
	prev []*Signal

	runs atomic.Uint64

	// owner this effect was created under
	parent *Owner

	// owns the cleanups and nested nodes of a single run
	scope *Owner
}

// NewEffect creates an effect under the current owner and, unless lazy, runs it.
func NewEffect(fn func(), lazy bool) *Effect {
	parent := CurrentOwner()

	e := &Effect{
		id:     NextEffectID(),
		fn:     fn,
		active: true,
		parent: parent,
		scope:  NewOwner(parent),
	}

	if parent != nil {
		parent.Add(e)
	}

	if !lazy {
		e.Run()
	}

	return e
}

func (e *Effect) ID() EffectID {
	return e.id
}

// Runs returns how many times the body executed.
func (e *Effect) Runs() uint64 {
	return e.runs.Load()
}

// Run executes the body, rebuilding the effect's dependencies from the reads it makes.
// It does nothing while the effect is stopped or already running.
func (e *Effect) Run() {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		observeEffectSkipped(SkipInactive)
		return
	}
	if e.running {
		e.mu.Unlock()
		observeEffectSkipped(SkipReentrant)
		Logger().Debug("sig: reentrant effect run suppressed", "effect", e.id)
		return
	}
	e.running = true
	e.prev = e.deps
	e.deps = nil
	e.mu.Unlock()

	defer func() {
		stopped := e.settle()
		if stopped {
			e.scope.Dispose()
		}

		if r := recover(); r != nil {
			Logger().Debug("sig: effect panicked", "effect", e.id, "panic", r)
			if !e.scope.handle(r) {
				panic(r)
			}
		}
	}()

	// cleanups and nested nodes from the previous run
	e.scope.Dispose()

	e.runs.Add(1)
	observeEffectRun()

	GetContext().RunWithEffect(e, e.fn)
}

// settle ends a run: signals read last time but not this time are dropped.
// Reports whether the effect was stopped during the run.
func (e *Effect) settle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.running = false
	prev := e.prev
	e.prev = nil

	for _, s := range prev {
		if !e.active || !slices.Contains(e.deps, s) {
			s.unsubscribe(e)
		}
	}

	return !e.active
}

func (e *Effect) track(s *Signal) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active || slices.Contains(e.deps, s) {
		return
	}

	e.deps = append(e.deps, s)
	s.subscribe(e)
}

// Stop unsubscribes the effect from everything it tracks and runs its cleanups.
// Run is a no-op until Resume.
func (e *Effect) Stop() {
	if e.stop() {
		e.scope.Dispose()
	}
}

func (e *Effect) stop() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return false
	}
	e.active = false

	for _, s := range e.deps {
		s.unsubscribe(e)
	}
	for _, s := range e.prev {
		s.unsubscribe(e)
	}
	e.deps = nil

	return true
}

// Resume reactivates a stopped effect. Tracking restarts on the next Run.
func (e *Effect) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.disposed {
		e.active = true
	}
}

// Dispose stops the effect for good and detaches it from its owner.
func (e *Effect) Dispose() {
	e.mu.Lock()
	e.disposed = true
	e.mu.Unlock()

	e.Stop()

	if e.parent != nil {
		e.parent.Remove(e)
	}
}

func (e *Effect) IsActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.active
}

// Dependencies returns the ids of the tracked signals, sorted.
func (e *Effect) Dependencies() []SignalID {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]SignalID, len(e.deps))
	for i, s := range e.deps {
		ids[i] = s.id
	}
	slices.Sort(ids)

	return ids
}
