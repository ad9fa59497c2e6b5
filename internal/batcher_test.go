package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatcher(t *testing.T) {
	t.Run("settles once the outermost batch wrote", func(t *testing.T) {
		b := NewBatcher()
		inner := true

		settle := b.Run(func() {
			assert.True(t, b.IsBatching())
			inner = b.Run(func() { b.Touch() })
		})

		assert.False(t, inner)
		assert.True(t, settle)
		assert.False(t, b.IsBatching())
	})

	t.Run("skips batches without writes", func(t *testing.T) {
		b := NewBatcher()
		b.Touch()

		assert.False(t, b.Run(func() {}))
	})

	t.Run("resets after a panic", func(t *testing.T) {
		b := NewBatcher()

		assert.Panics(t, func() {
			b.Run(func() {
				b.Touch()
				panic("boom")
			})
		})

		assert.False(t, b.IsBatching())
		assert.False(t, b.Run(func() {}))
	})
}

func TestNotifyQueue(t *testing.T) {
	t.Run("delivers the value taken", func(t *testing.T) {
		log := []any{}
		q := NewNotifyQueue()
		f := NewField("a", 1)
		f.Subscribe(func(v any) { log = append(log, v) }, false)

		q.Enqueue(f)
		q.Enqueue(f)
		notes := q.Take()
		f.Set(2)
		Trigger(notes)

		assert.Len(t, notes, 1)
		assert.Equal(t, []any{1}, log)
		assert.Equal(t, 0, q.Len())
	})
}
