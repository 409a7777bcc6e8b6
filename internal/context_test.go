//go:build !wasm

package internal

import (
	"testing"

	"github.com/petermattis/goid"
	"github.com/stretchr/testify/assert"
)

func hasContext() bool {
	_, ok := contexts.Load(goid.Get())
	return ok
}

func TestExecutionContext(t *testing.T) {
	t.Run("released once idle", func(t *testing.T) {
		s := NewSignal(0)
		s.Read()
		assert.False(t, hasContext())

		e := NewEffect(func() {
			s.Read()
			assert.True(t, hasContext())
		}, false)
		assert.False(t, hasContext())

		e.Dispose()
	})

	t.Run("tracks the innermost effect", func(t *testing.T) {
		var inner, outer *Effect

		outer = NewEffect(func() {
			assert.Same(t, outer, GetContext().CurrentEffect())

			inner = NewEffect(func() {
				assert.Same(t, inner, GetContext().CurrentEffect())
			}, true)
			inner.Run()

			assert.Same(t, outer, GetContext().CurrentEffect())
		}, true)
		outer.Run()

		assert.Nil(t, GetContext().CurrentEffect())
		releaseContext(GetContext())
	})

	t.Run("untracked hides the current effect", func(t *testing.T) {
		e := NewEffect(func() {
			Untrack(func() {
				assert.Nil(t, GetContext().CurrentEffect())
			})
		}, false)

		e.Dispose()
	})

	t.Run("owner restored after a panic", func(t *testing.T) {
		o := NewOwner(nil)

		assert.Panics(t, func() {
			o.Run(func() error { panic("boom") })
		})

		assert.Nil(t, CurrentOwner())
		assert.False(t, hasContext())
	})

	t.Run("batch and flush are scoped to the goroutine", func(t *testing.T) {
		r := NewRuntime(RuntimeConfig{})

		err := r.Batch(func() {
			assert.True(t, GetContext().IsBatching(r))
			assert.False(t, GetContext().IsFlushing(r))

			r.ScheduleEffect(func() {
				assert.True(t, GetContext().IsFlushing(r))
			})
		})
		assert.NoError(t, err)

		done := make(chan bool)
		go func() {
			ctx := GetContext()
			defer releaseContext(ctx)
			done <- ctx.IsBatching(r)
		}()
		assert.False(t, <-done)

		assert.False(t, hasContext())
	})
}
