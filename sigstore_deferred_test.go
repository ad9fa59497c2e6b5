package sigstore

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestDeferred(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("coalesces writes into one notification", func(t *testing.T) {
		var mu sync.Mutex
		log := []int{}
		notified := make(chan struct{}, 10)

		s, err := New(nil, []Rule{{
			In:  []string{"a"},
			Out: []string{"b"},
			Exec: func(f *Flush) error {
				f.Set(map[string]any{"b": intOf(f, "a") * 2})
				return nil
			},
		}}, WithPolicy(Deferred), WithDelay(5*time.Millisecond))
		require.NoError(t, err)
		defer s.Close()

		s.Field("b").Subscribe(func(v any) {
			mu.Lock()
			log = append(log, v.(int))
			mu.Unlock()
			notified <- struct{}{}
		}, false)

		for i := 1; i <= 3; i++ {
			require.NoError(t, s.SetState(map[string]any{"a": i}))
		}

		select {
		case <-notified:
		case <-time.After(time.Second):
			t.Fatal("deferred flush never ran")
		}

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []int{6}, log)
		assert.Equal(t, 6, s.Get("b"))
	})

	t.Run("flush settles right away", func(t *testing.T) {
		log := []int{}

		s, err := New(nil, []Rule{{
			In:  []string{"a"},
			Out: []string{"b"},
			Exec: func(f *Flush) error {
				f.Set(map[string]any{"b": intOf(f, "a") + 1})
				return nil
			},
		}}, WithPolicy(Deferred), WithDelay(time.Hour))
		require.NoError(t, err)
		defer s.Close()

		s.Field("b").Subscribe(func(v any) { log = append(log, v.(int)) }, false)

		require.NoError(t, s.SetState(map[string]any{"a": 1}))
		assert.Nil(t, s.Get("b"))
		assert.Empty(t, log)

		require.NoError(t, s.Flush())
		assert.Equal(t, 2, s.Get("b"))
		assert.Equal(t, []int{2}, log)
	})

	t.Run("notifies the values of its own flush", func(t *testing.T) {
		var mu sync.Mutex
		log := []string{}
		record := func(name string) func(any) {
			return func(v any) {
				mu.Lock()
				log = append(log, fmt.Sprintf("%s=%v", name, v))
				mu.Unlock()
			}
		}

		s, err := New(nil, []Rule{{
			In:  []string{"y"},
			Out: []string{"c"},
			Exec: func(f *Flush) error {
				f.Set(map[string]any{"c": intOf(f, "y") * 100})
				return nil
			},
		}}, WithPolicy(Deferred), WithDelay(time.Hour))
		require.NoError(t, err)
		defer s.Close()

		entered := make(chan struct{})
		release := make(chan struct{})
		s.Field("a").Subscribe(func(any) {
			close(entered)
			<-release
		}, false)
		s.Field("y").Subscribe(record("y"), false)
		s.Field("c").Subscribe(record("c"), false)

		require.NoError(t, s.SetState(map[string]any{"a": 1, "y": 1}))

		done := make(chan error)
		go func() { done <- s.Flush() }()

		<-entered
		require.NoError(t, s.SetState(map[string]any{"y": 2}))
		close(release)
		require.NoError(t, <-done)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []string{"y=1", "c=100"}, log)
		assert.Equal(t, 2, s.Get("y"))
		assert.Equal(t, 100, s.Get("c"))
	})

	t.Run("reports errors to handlers", func(t *testing.T) {
		errBoom := errors.New("boom")
		caught := make(chan any, 1)

		s, err := New(nil, []Rule{{
			In:   []string{"a"},
			Exec: func(f *Flush) error { return errBoom },
		}}, WithPolicy(Deferred))
		require.NoError(t, err)
		defer s.Close()

		s.OnError(func(err any) { caught <- err })

		require.NoError(t, s.SetState(map[string]any{"a": 1}))

		select {
		case err := <-caught:
			assert.ErrorIs(t, err.(error), errBoom)
		case <-time.After(time.Second):
			t.Fatal("error handler never ran")
		}
	})

	t.Run("close cancels the pending flush", func(t *testing.T) {
		runs := 0
		cleanups := 0

		s, err := New(nil, []Rule{{
			In:   []string{"a"},
			Exec: func(f *Flush) error { runs++; return nil },
		}}, WithPolicy(Deferred), WithDelay(time.Hour))
		require.NoError(t, err)

		s.OnCleanup(func() { cleanups++ })

		require.NoError(t, s.SetState(map[string]any{"a": 1}))
		s.Close()
		s.Close()

		assert.ErrorIs(t, s.SetState(map[string]any{"a": 2}), ErrClosed)
		assert.Equal(t, 0, runs)
		assert.Equal(t, 1, cleanups)
	})
}
