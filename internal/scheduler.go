package internal

import (
	"sync"
	"time"
)

// Policy selects when a store drains its rules and notifies subscribers.
type Policy int

const (
	// PolicyImmediate settles inside the SetState call.
	PolicyImmediate Policy = iota
	// PolicyDeferred coalesces writes and settles once, after a short delay.
	PolicyDeferred
)

func (p Policy) String() string {
	switch p {
	case PolicyImmediate:
		return "immediate"
	case PolicyDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

type Scheduler struct {
	policy Policy
	delay  time.Duration

	mu    sync.Mutex
	timer *time.Timer

	// incremented each time the store settles
	clock int
}

func NewScheduler(policy Policy, delay time.Duration) *Scheduler {
	if delay <= 0 {
		delay = time.Millisecond
	}

	return &Scheduler{
		policy: policy,
		delay:  delay,
	}
}

func (s *Scheduler) Deferred() bool { return s.policy == PolicyDeferred }

// Schedule arms a single timer running fn. Calls made while it is armed are no-ops.
func (s *Scheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		return
	}

	var t *time.Timer
	t = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		current := s.timer == t
		if current {
			s.timer = nil
		}
		s.mu.Unlock()

		if current {
			fn()
		}
	})
	s.timer = t
}

// Cancel disarms the pending timer, reporting whether one was armed.
func (s *Scheduler) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer == nil {
		return false
	}

	s.timer.Stop()
	s.timer = nil
	return true
}

func (s *Scheduler) Tick() { s.clock++ }

func (s *Scheduler) Time() int { return s.clock }
