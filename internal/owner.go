package internal

import (
	"slices"
	"sync"
)

type Disposable interface {
	Dispose()
}

// Owner scopes the lifetime of the reactive nodes created under it.
// Disposing an owner disposes its children, then runs its cleanups.
type Owner struct {
	mu sync.Mutex

	// cleanup functions called once, on the next dispose
	cleanups []func()

	// functions called on every dispose
	disposers []func()

	// panic handlers
	catchers []func(any)

	parent   *Owner
	children []Disposable
}

// NewOwner creates an owner whose panics bubble up to parent.
// It is not registered as a child of parent; use Add for that.
func NewOwner(parent *Owner) *Owner {
	return &Owner{parent: parent}
}

// Run fn with this owner as the current one.
// A panic is handed to the nearest owner with an error handler,
// and propagates if there is none.
func (o *Owner) Run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if !o.handle(r) {
				panic(r)
			}
		}
	}()

	GetContext().RunWithOwner(o, func() { err = fn() })
	return err
}

func (o *Owner) Add(child Disposable) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !slices.Contains(o.children, child) {
		o.children = append(o.children, child)
	}
}

func (o *Owner) Remove(child Disposable) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if i := slices.Index(o.children, child); i >= 0 {
		o.children = slices.Delete(o.children, i, i+1)
	}
}

// Dispose disposes the children, most recent first, then runs the cleanups.
// The owner stays usable afterwards.
func (o *Owner) Dispose() {
	o.DisposeChildren()

	o.mu.Lock()
	cleanups := o.cleanups
	o.cleanups = nil
	disposers := slices.Clone(o.disposers)
	o.mu.Unlock()

	for _, fn := range cleanups {
		fn()
	}

	for _, fn := range disposers {
		fn()
	}
}

func (o *Owner) DisposeChildren() {
	o.mu.Lock()
	children := o.children
	o.children = nil
	o.mu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}
}

func (o *Owner) OnCleanup(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cleanups = append(o.cleanups, fn)
}

func (o *Owner) OnDispose(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.disposers = append(o.disposers, fn)
}

func (o *Owner) OnError(fn func(any)) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.catchers = append(o.catchers, fn)
}

// handle passes r to the nearest owner (this one included) with error handlers.
// Reports whether anyone handled it.
func (o *Owner) handle(r any) bool {
	for owner := o; owner != nil; owner = owner.parent {
		owner.mu.Lock()
		catchers := slices.Clone(owner.catchers)
		owner.mu.Unlock()

		if len(catchers) == 0 {
			continue
		}

		for _, catcher := range catchers {
			catcher(r)
		}
		return true
	}

	return false
}
