package internal

import (
	"slices"
	"sync"
)

type Signal struct {
	id SignalID

	// guards value and subs; never held while user code runs
	mu sync.RWMutex

	// serializes Update calls so concurrent read-modify-writes don't lose updates
	updateMu sync.Mutex

	value any

	// subscribed effects, in subscription order
	subs []*Effect
}

func NewSignal(initial any) *Signal {
	return &Signal{
		id:    NextSignalID(),
		value: initial,
	}
}

func (s *Signal) ID() SignalID {
	return s.id
}

// Read returns the value and, when called from a running effect, subscribes that effect.
func (s *Signal) Read() any {
	s.mu.RLock()
	value := s.value
	s.mu.RUnlock()

	ctx := GetContext()
	if e := ctx.CurrentEffect(); e != nil {
		e.track(s)
	}
	releaseContext(ctx)

	return value
}

// Peek returns the value without tracking.
func (s *Signal) Peek() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.value
}

// Write replaces the value, then notifies the subscribers.
// There is no equality check: every write notifies.
func (s *Signal) Write(v any) {
	s.mu.Lock()
	s.value = v
	s.mu.Unlock()

	observeSignalWrite()
	s.notify()
}

// Update replaces the value with fn(value), then notifies.
// Updates are applied one at a time. fn runs without the value lock held, so it
// may read or write the signal, but must not Update it again.
func (s *Signal) Update(fn func(any) any) {
	func() {
		s.updateMu.Lock()
		defer s.updateMu.Unlock()

		value := fn(s.Peek())

		s.mu.Lock()
		s.value = value
		s.mu.Unlock()
	}()

	observeSignalWrite()
	s.notify()
}

// Subscribers returns the ids of the subscribed effects, in subscription order.
func (s *Signal) Subscribers() []EffectID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]EffectID, len(s.subs))
	for i, e := range s.subs {
		ids[i] = e.id
	}

	return ids
}

func (s *Signal) notify() {
	s.mu.RLock()
	subs := slices.Clone(s.subs)
	s.mu.RUnlock()

	ctx := GetContext()
	r := ctx.CurrentBatch()
	releaseContext(ctx)

	if r != nil {
		r.MarkDirty(s.id)
		for _, e := range subs {
			r.scheduleRun(e)
		}
		return
	}

	for _, e := range subs {
		e.Run()
	}
}

func (s *Signal) subscribe(e *Effect) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.subs, e) {
		s.subs = append(s.subs, e)
	}
}

func (s *Signal) unsubscribe(e *Effect) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := slices.Index(s.subs, e); i >= 0 {
		s.subs = slices.Delete(s.subs, i, i+1)
	}
}
