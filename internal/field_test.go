package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsEqual(t *testing.T) {
	slice := []int{1, 2}
	m := map[string]int{"a": 1}
	when := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	type withSlice struct{ V any }

	cases := []struct {
		name string
		a, b any
		want bool
	}{
		{"ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"int and float", 1, 1.0, false},
		{"strings", "a", "a", true},
		{"nils", nil, nil, true},
		{"nil and value", nil, 0, false},
		{"same instant", when, when.In(time.FixedZone("X", 7200)), true},
		{"different instant", when, when.Add(time.Second), false},
		{"time and string", when, "2024-01-01", false},
		{"same slice", slice, slice, true},
		{"resliced", slice, slice[:1], false},
		{"equal slices", slice, []int{1, 2}, false},
		{"same map", m, m, true},
		{"equal maps", m, map[string]int{"a": 1}, false},
		{"funcs", func() {}, func() {}, false},
		{"struct holding a slice", withSlice{slice}, withSlice{slice}, false},
		{"comparable structs", withSlice{1}, withSlice{1}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, isEqual(c.a, c.b))
		})
	}
}

func TestField(t *testing.T) {
	t.Run("reports changes", func(t *testing.T) {
		f := NewField("a", 1)

		assert.False(t, f.Set(1))
		assert.True(t, f.Set(2))
		assert.Equal(t, 2, f.Value())
	})

	t.Run("subscribe, trigger and unsubscribe", func(t *testing.T) {
		log := []any{}
		f := NewField("a", 1)

		stop := f.Subscribe(func(v any) { log = append(log, v) }, true)
		f.Set(2)
		f.Trigger()
		stop()
		stop()
		f.Trigger()

		assert.Equal(t, []any{1, 2}, log)
	})
}
