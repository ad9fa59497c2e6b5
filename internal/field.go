package internal

import (
	"reflect"
	"sync"
	"time"
)

type subscriber struct {
	id int
	fn func(any)
}

// Field is a single named value with its subscribers.
type Field struct {
	name string

	mu    sync.Mutex
	value any
	subs  []subscriber
	next  int

	// set while the field waits in the store's notify queue
	queued bool
}

func NewField(name string, initial any) *Field {
	return &Field{name: name, value: initial}
}

func (f *Field) Name() string { return f.name }

func (f *Field) Value() any {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.value
}

// Set stores v and reports whether it differs from the previous value.
func (f *Field) Set(v any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if isEqual(f.value, v) {
		return false
	}

	f.value = v
	return true
}

// force stores v without comparing, used for nested object snapshots
func (f *Field) force(v any) {
	f.mu.Lock()
	f.value = v
	f.mu.Unlock()
}

// Subscribe registers fn. If immediate, fn is called once with the current value before returning.
func (f *Field) Subscribe(fn func(any), immediate bool) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs = append(f.subs, subscriber{id, fn})
	value := f.value
	f.mu.Unlock()

	if immediate {
		fn(value)
	}

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()

		for i, s := range f.subs {
			if s.id == id {
				f.subs = append(f.subs[:i:i], f.subs[i+1:]...)
				return
			}
		}
	}
}

// Trigger calls every subscriber with the latest value.
func (f *Field) Trigger() {
	f.notify(f.Value())
}

func (f *Field) notify(value any) {
	f.mu.Lock()
	subs := f.subs
	f.mu.Unlock()

	for _, s := range subs {
		s.fn(value)
	}
}

func isEqual(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}

	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	if ta.Comparable() {
		return safeEqual(a, b)
	}

	// non comparable values only match when they share the same reference
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.UnsafePointer() == vb.UnsafePointer()
	case reflect.Map:
		return va.UnsafePointer() == vb.UnsafePointer()
	default:
		return false
	}
}

// safeEqual compares with ==, treating a runtime comparison panic
// (an interface field holding a slice, for instance) as a change.
func safeEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()

	return a == b
}
