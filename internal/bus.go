package internal

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Handler processes a command. Returning false stops the chain.
type Handler func(ctx context.Context, payload any) (bool, error)

// Dispatcher is anything a Bus can forward commands to.
type Dispatcher interface {
	Exec(ctx context.Context, action string, payload any) error
}

type handlerEntry struct {
	fn  Handler
	tag any
}

// Bus runs the handlers registered for a command in order, then forwards
// the command to the next dispatcher unless a handler stopped it.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]handlerEntry
	next     Dispatcher

	log *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}

	return &Bus{
		handlers: make(map[string][]handlerEntry),
		log:      log.Named("bus"),
	}
}

// validTag reports whether tag can identify handlers for Detach.
func validTag(tag any) bool {
	return tag == nil || reflect.TypeOf(tag).Comparable()
}

func mustComparable(tag any) {
	if !validTag(tag) {
		panic(fmt.Sprintf("sigstore: handler tag of type %T is not comparable", tag))
	}
}

// On appends a handler for action. tag, when not nil, is used by Detach and
// must be comparable.
func (b *Bus) On(action string, fn Handler, tag any) {
	mustComparable(tag)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[action] = append(b.handlers[action], handlerEntry{fn, tag})
}

// Intercept registers a handler running before the ones already registered.
func (b *Bus) Intercept(action string, fn Handler, tag any) {
	mustComparable(tag)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[action] = slices.Insert(b.handlers[action], 0, handlerEntry{fn, tag})
}

// Detach removes every handler registered with tag.
func (b *Bus) Detach(tag any) {
	// no handler can be registered with an uncomparable tag
	if tag == nil || !validTag(tag) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for action, entries := range b.handlers {
		entries = slices.DeleteFunc(entries, func(e handlerEntry) bool { return safeEqual(e.tag, tag) })
		if len(entries) == 0 {
			delete(b.handlers, action)
		} else {
			b.handlers[action] = entries
		}
	}
}

func (b *Bus) SetNext(next Dispatcher) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next = next
}

func (b *Bus) Next() Dispatcher {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.next
}

// Exec runs the chain for action. A handler error stops the chain and is returned.
func (b *Bus) Exec(ctx context.Context, action string, payload any) error {
	b.mu.RLock()
	entries := slices.Clone(b.handlers[action])
	next := b.next
	b.mu.RUnlock()

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		ok, err := entry.fn(ctx, payload)
		if err != nil {
			return err
		}
		if !ok {
			b.log.Debug("command stopped", zap.String("action", action), zap.Int("handler", i))
			return nil
		}
	}

	if next == nil {
		return nil
	}

	return next.Exec(ctx, action, payload)
}
