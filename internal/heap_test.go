package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func drain(h *RuleHeap) []string {
	names := []string{}
	for r := h.Pop(); r != nil; r = h.Pop() {
		names = append(names, r.Name)
	}
	return names
}

func TestHeap(t *testing.T) {
	rule := func(name string, depth int) *Rule { return &Rule{Name: name, depth: depth} }

	t.Run("pops lowest depth first, fifo inside a depth", func(t *testing.T) {
		h := NewHeap(2)
		h.Insert(rule("c", 2))
		h.Insert(rule("a1", 0))
		h.Insert(rule("b", 1))
		h.Insert(rule("a2", 0))

		assert.Equal(t, 4, h.Len())
		assert.Equal(t, []string{"a1", "a2", "b", "c"}, drain(h))
		assert.Equal(t, 0, h.Len())
	})

	t.Run("ignores duplicates", func(t *testing.T) {
		h := NewHeap(0)
		r := rule("a", 0)
		h.Insert(r)
		h.Insert(r)

		assert.Equal(t, []string{"a"}, drain(h))
	})

	t.Run("removes from any position", func(t *testing.T) {
		h := NewHeap(0)
		a, b, c, d := rule("a", 0), rule("b", 0), rule("c", 0), rule("d", 0)
		for _, r := range []*Rule{a, b, c, d} {
			h.Insert(r)
		}

		h.Remove(b)
		h.Remove(a)
		h.Remove(d)
		h.Insert(a)

		assert.Equal(t, []string{"c", "a"}, drain(h))
	})

	t.Run("lower depths inserted mid drain come next", func(t *testing.T) {
		h := NewHeap(3)
		h.Insert(rule("deep", 3))
		h.Insert(rule("mid", 1))

		assert.Equal(t, "mid", h.Pop().Name)
		h.Insert(rule("shallow", 0))
		assert.Equal(t, []string{"shallow", "deep"}, drain(h))
	})

	t.Run("grows past the initial depth", func(t *testing.T) {
		h := NewHeap(0)
		h.Insert(rule("far", 5))
		h.Insert(rule("near", 0))

		assert.Equal(t, []string{"near", "far"}, drain(h))
	})

	t.Run("clear empties", func(t *testing.T) {
		h := NewHeap(1)
		h.Insert(rule("a", 0))
		h.Insert(rule("b", 1))
		h.Clear()

		assert.Nil(t, h.Pop())
		assert.Equal(t, 0, h.Len())
	})
}
