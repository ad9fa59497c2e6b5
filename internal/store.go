package internal

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var ErrClosed = errors.New("store closed")

type Options struct {
	Policy Policy
	Delay  time.Duration

	// maximum rule executions per flush, 0 for no limit
	MaxIterations int

	Logger *zap.Logger
}

// Store ties a State to its Router: every write is routed to the rules
// reading it, and subscribers are notified once the rules settled.
type Store struct {
	mu sync.Mutex
	// goroutine currently holding mu, 0 when unlocked
	holder atomic.Int64

	state     *State
	router    *Router
	batcher   *Batcher
	scheduler *Scheduler
	notify    *NotifyQueue
	owner     *Owner

	maxIterations int
	flushing      bool
	closed        bool

	log *zap.Logger
}

func NewStore(init map[string]any, rules []Rule, opts Options) (*Store, error) {
	router, err := NewRouter(rules)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Store{
		state:         NewState(),
		router:        router,
		batcher:       NewBatcher(),
		scheduler:     NewScheduler(opts.Policy, opts.Delay),
		notify:        NewNotifyQueue(),
		owner:         NewOwner(),
		maxIterations: opts.MaxIterations,
		log:           log.Named("store"),
	}

	// initial values are not notified but derived fields are computed
	s.locked(func() {
		s.apply(init)
		err = s.drain()
		s.notify.Take()
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("store created",
		zap.Int("rules", len(router.rules)),
		zap.Stringer("policy", opts.Policy),
	)

	return s, nil
}

// locked runs fn holding the store lock. Calls coming from the goroutine
// already holding it (a rule writing its outputs) run directly. On wasm every
// goroutine shares one id, see gid_wasm.go.
func (s *Store) locked(fn func()) {
	gid := getGID()
	if s.holder.Load() == gid {
		fn()
		return
	}

	s.mu.Lock()
	s.holder.Store(gid)
	defer func() {
		s.holder.Store(0)
		s.mu.Unlock()
	}()

	fn()
}

func (s *Store) SetState(partial map[string]any) error {
	var err error
	var notes []Notification

	s.locked(func() {
		if s.closed {
			err = ErrClosed
			return
		}

		s.apply(partial)
		if !s.batcher.IsBatching() {
			notes, err = s.settle()
		}
	})

	Trigger(notes)
	return err
}

// Batch groups every SetState made by fn into a single flush.
func (s *Store) Batch(fn func()) error {
	var err error
	var notes []Notification

	s.locked(func() {
		if s.closed {
			err = ErrClosed
			return
		}

		if s.batcher.Run(fn) {
			notes, err = s.settle()
		}
	})

	Trigger(notes)
	return err
}

// Flush settles pending work now instead of waiting for the deferred timer.
func (s *Store) Flush() error {
	s.scheduler.Cancel()

	var err error
	var notes []Notification

	s.locked(func() {
		if s.flushing {
			return
		}
		err = s.drain()
		notes = s.notify.Take()
	})

	Trigger(notes)
	return err
}

func (s *Store) GetState() map[string]any {
	var out map[string]any
	s.locked(func() { out = s.state.Snapshot() })
	return out
}

func (s *Store) Get(name string) any {
	var out any
	s.locked(func() { out = s.state.Value(name) })
	return out
}

func (s *Store) GetReactive() map[string]*Field {
	var out map[string]*Field
	s.locked(func() { out = s.state.Fields() })
	return out
}

// Field returns the named field, creating an empty one when it was never written.
func (s *Store) Field(name string) *Field {
	var f *Field
	s.locked(func() { f = s.state.Ensure(name) })
	return f
}

func (s *Store) Rules() []*Rule { return s.router.Rules() }

// Time returns how many times the store has settled.
func (s *Store) Time() int {
	var t int
	s.locked(func() { t = s.scheduler.Time() })
	return t
}

// OnError registers a handler for errors raised by deferred flushes.
// Without handlers they are only logged.
func (s *Store) OnError(fn func(any)) {
	s.locked(func() { s.owner.OnError(fn) })
}

// OnCleanup registers a function run once by Close.
func (s *Store) OnCleanup(fn func()) {
	s.locked(func() { s.owner.OnCleanup(fn) })
}

// Close cancels a pending deferred flush and runs the cleanup functions.
func (s *Store) Close() {
	s.scheduler.Cancel()

	s.locked(func() {
		if s.closed {
			return
		}
		s.closed = true
		s.router.Reset()
		s.notify.Take()
		s.owner.Dispose()
	})
}

// apply writes partial and routes the changed names, caller holds the lock.
func (s *Store) apply(partial map[string]any) {
	changed := s.state.Set(partial)
	if len(changed) == 0 {
		return
	}
	s.batcher.Touch()

	for _, name := range changed {
		if f, ok := s.state.Field(name); ok {
			s.notify.Enqueue(f)
		}
	}
	s.router.Collect(changed)
}

// settle drains now or arms the deferred timer, depending on the policy.
// Writes made by a running rule are picked up by the drain already in progress.
func (s *Store) settle() ([]Notification, error) {
	if s.flushing {
		return nil, nil
	}

	if s.scheduler.Deferred() {
		if s.router.Pending() > 0 || s.notify.Len() > 0 {
			s.scheduler.Schedule(s.deferredFlush)
		}
		return nil, nil
	}

	err := s.drain()
	return s.notify.Take(), err
}

func (s *Store) drain() error {
	s.flushing = true
	defer func() {
		s.flushing = false
		// only non empty when a rule panicked
		s.router.Reset()
	}()

	start := time.Now()
	runs, err := s.router.Drain(s.maxIterations, func(rule *Rule) error {
		s.log.Debug("exec rule", zap.String("rule", rule.Name), zap.Int("depth", rule.depth))
		return rule.Exec(&Flush{store: s, rule: rule})
	})
	s.scheduler.Tick()

	s.log.Debug("flush",
		zap.Int("rules", runs),
		zap.Int("fields", s.notify.Len()),
		zap.Duration("took", time.Since(start)),
		zap.Error(err),
	)

	return err
}

func (s *Store) deferredFlush() {
	var err error
	var notes []Notification
	var catchers []func(any)

	s.locked(func() {
		if s.closed || s.flushing {
			return
		}
		err = s.drain()
		notes = s.notify.Take()
		catchers = s.owner.Catchers()
	})

	Trigger(notes)

	if err != nil {
		s.log.Error("deferred flush failed", zap.Error(err))
		for _, catch := range catchers {
			catch(err)
		}
	}
}
