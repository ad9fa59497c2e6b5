// Package sigstore keeps derived state consistent with its inputs.
//
// A Store holds named fields and a route table of rules. Each rule reads
// some fields and writes others; writing a field queues the rules reading it,
// and the store runs them producers first until nothing is pending. Field
// subscribers are notified once per flush, with settled values only.
//
// A Bus is the imperative side: a chain of command handlers that hosts can
// intercept, extend or continue into another Bus.
package sigstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/AnatoleLucet/sigstore/internal"
)

const DefaultMaxIterations = 1000

var (
	// ErrDiverged is returned when a flush keeps re-queuing rules past the iteration limit.
	ErrDiverged = internal.ErrDiverged
	// ErrClosed is returned by writes on a closed store.
	ErrClosed = internal.ErrClosed
	// ErrInvalidRule is returned by New for rules without inputs or exec function.
	ErrInvalidRule = internal.ErrInvalidRule
	// ErrInvalidPayload is returned by Handle when a command payload has the wrong type.
	ErrInvalidPayload = errors.New("invalid payload")
)

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

type Policy = internal.Policy

const (
	// Immediate settles and notifies inside SetState.
	Immediate = internal.PolicyImmediate
	// Deferred coalesces writes and settles once after a short delay.
	Deferred = internal.PolicyDeferred
)

// Rule recomputes Out whenever a field of In changes. Exec reads the state
// through the Flush and writes its outputs with Flush.Set.
type Rule = internal.Rule

// Flush is the view of the store a rule gets while it executes.
type Flush = internal.Flush

type config struct {
	internal.Options
}

type Option func(*config)

// WithPolicy selects when writes are settled. Defaults to Immediate.
func WithPolicy(p Policy) Option {
	return func(c *config) { c.Policy = p }
}

// WithDelay sets how long a Deferred store waits before settling. Defaults to 1ms.
func WithDelay(d time.Duration) Option {
	return func(c *config) { c.Delay = d }
}

// WithMaxIterations caps rule executions per flush, 0 disables the cap.
func WithMaxIterations(n int) Option {
	return func(c *config) { c.MaxIterations = n }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *config) { c.Logger = log }
}

func newConfig(opts []Option) *config {
	c := &config{internal.Options{
		Policy:        Immediate,
		MaxIterations: DefaultMaxIterations,
		Logger:        zap.NewNop(),
	}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Store struct {
	store *internal.Store
}

// New creates a store with the given initial values and route table.
// Rules run on the initial values before New returns; nobody is notified.
func New(init map[string]any, rules []Rule, opts ...Option) (*Store, error) {
	c := newConfig(opts)

	s, err := internal.NewStore(init, rules, c.Options)
	if err != nil {
		return nil, fmt.Errorf("new store: %w", err)
	}

	return &Store{s}, nil
}

// SetState writes partial. Plain map[string]any values are merged key by key
// into nested objects, any other value replaces the field.
func (s *Store) SetState(partial map[string]any) error { return s.store.SetState(partial) }

// Batch groups the writes made by fn into a single flush.
func (s *Store) Batch(fn func()) error { return s.store.Batch(fn) }

// Flush settles a Deferred store now.
func (s *Store) Flush() error { return s.store.Flush() }

// GetState returns a snapshot of every field.
func (s *Store) GetState() map[string]any { return s.store.GetState() }

// Get returns the current value of a field, dotted names reach into nested objects.
func (s *Store) Get(name string) any { return s.store.Get(name) }

// GetReactive returns every field by dotted name.
func (s *Store) GetReactive() map[string]*Field {
	fields := s.store.GetReactive()

	out := make(map[string]*Field, len(fields))
	for name, f := range fields {
		out[name] = &Field{f}
	}
	return out
}

// Field returns the named field, creating it empty if it was never written.
func (s *Store) Field(name string) *Field { return &Field{s.store.Field(name)} }

// OnError registers a handler for errors of deferred flushes, which have no caller to return to.
func (s *Store) OnError(fn func(any)) { s.store.OnError(fn) }

// OnCleanup registers a function to be called ONCE when the store is closed.
func (s *Store) OnCleanup(fn func()) { s.store.OnCleanup(fn) }

func (s *Store) Close() { s.store.Close() }

type Field struct {
	field *internal.Field
}

func (f *Field) Name() string { return f.field.Name() }

func (f *Field) Value() any { return f.field.Value() }

// Subscribe calls fn with the settled value each time the field changes,
// and once right away if immediate. It returns the unsubscribe function.
func (f *Field) Subscribe(fn func(any), immediate bool) func() {
	return f.field.Subscribe(fn, immediate)
}

// Reactive is a typed view of a field.
type Reactive[T any] struct {
	field *internal.Field
}

// NewReactive returns a typed view of the named field of s.
func NewReactive[T any](s *Store, name string) *Reactive[T] {
	return &Reactive[T]{s.store.Field(name)}
}

func (r *Reactive[T]) Value() T { return as[T](r.field.Value()) }

func (r *Reactive[T]) Subscribe(fn func(T), immediate bool) func() {
	return r.field.Subscribe(func(v any) { fn(as[T](v)) }, immediate)
}

// Handler processes a command payload. Returning false stops the chain.
type Handler = internal.Handler

// Dispatcher receives the commands a Bus did not stop.
type Dispatcher = internal.Dispatcher

// Handle adapts a typed handler, failing with ErrInvalidPayload on other payload types.
func Handle[P any](fn func(ctx context.Context, payload P) (bool, error)) Handler {
	return func(ctx context.Context, payload any) (bool, error) {
		p, ok := payload.(P)
		if !ok {
			return false, fmt.Errorf("%w: got %T, want %T", ErrInvalidPayload, payload, p)
		}
		return fn(ctx, p)
	}
}

type Bus struct {
	bus *internal.Bus
}

// NewBus creates an empty command chain. Only WithLogger applies.
func NewBus(opts ...Option) *Bus {
	c := newConfig(opts)
	return &Bus{internal.NewBus(c.Logger)}
}

// On registers a handler running after the ones already registered for action.
// The optional tag identifies it for Detach and must be comparable.
func (b *Bus) On(action string, fn Handler, tag ...any) { b.bus.On(action, fn, first(tag)) }

// Intercept registers a handler running before the ones already registered for action.
func (b *Bus) Intercept(action string, fn Handler, tag ...any) {
	b.bus.Intercept(action, fn, first(tag))
}

// Detach removes every handler registered with tag.
func (b *Bus) Detach(tag any) { b.bus.Detach(tag) }

// SetNext splices next after this bus.
func (b *Bus) SetNext(next Dispatcher) { b.bus.SetNext(next) }

// Exec runs the handlers of action, then the next dispatcher unless one returned false.
func (b *Bus) Exec(ctx context.Context, action string, payload any) error {
	return b.bus.Exec(ctx, action, payload)
}

func first(tags []any) any {
	if len(tags) == 0 {
		return nil
	}
	return tags[0]
}
