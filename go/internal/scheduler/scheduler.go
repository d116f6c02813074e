// Package scheduler provides cancellable one-shot deferred calls.
//
// Every call armed with After gets a Handle carrying a generation number.
// Cancel and every new After bump the generation, so a callback whose timer
// already fired but has not yet acquired the guard is discarded instead of
// running against state that has moved on.
package scheduler

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// ErrStopped is returned by After once Stop has been called.
var ErrStopped = errors.New("scheduler stopped")

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) clockwork.Timer
}

// Handle identifies one armed call. A handle stops being valid as soon as the
// call is cancelled or replaced.
type Handle struct {
	gen uint64
}

// Scheduler holds at most one outstanding call.
type Scheduler struct {
	clock Clock
	guard sync.Locker

	mu      sync.Mutex
	gen     uint64
	timer   clockwork.Timer
	done    chan struct{}
	stopped bool
}

// New creates a scheduler. Fired callbacks run with guard held; callers that
// mutate shared state from the callback should pass the lock that protects it
// and hold that same lock whenever they call After or Cancel.
func New(clock Clock, guard sync.Locker) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if guard == nil {
		guard = &sync.Mutex{}
	}
	return &Scheduler{
		clock: clock,
		guard: guard,
	}
}

// After arms fn to run once after d, replacing any pending call.
func (s *Scheduler) After(d time.Duration, fn func()) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return Handle{}, ErrStopped
	}

	// Replace any existing timer first
	s.cancelLocked()

	s.gen++
	h := Handle{gen: s.gen}
	timer := s.clock.NewTimer(d)
	done := make(chan struct{})
	s.timer = timer
	s.done = done

	go s.wait(h, timer, done, fn)

	return h, nil
}

// Cancel invalidates the pending call, if any. It is safe to call when
// nothing is pending.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.gen++
}

// Stop cancels the pending call and refuses further scheduling.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.gen++
	s.stopped = true
}

// pending reports whether a call is armed and has not fired yet.
func (s *Scheduler) pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// current reports whether h is the most recently armed, still valid call.
func (s *Scheduler) current(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stopped && h.gen == s.gen
}

func (s *Scheduler) cancelLocked() {
	if s.timer == nil {
		return
	}
	stopAndDrainTimer(s.timer)
	close(s.done)
	s.timer = nil
	s.done = nil
}

func (s *Scheduler) wait(h Handle, timer clockwork.Timer, done chan struct{}, fn func()) {
	select {
	case <-timer.Chan():
		s.guard.Lock()
		defer s.guard.Unlock()

		if !s.claim(h) {
			log.Debug().Uint64("generation", h.gen).Msg("discarding stale scheduled call")
			return
		}
		fn()
	case <-done:
	}
}

// claim marks h as fired if it is still current.
func (s *Scheduler) claim(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || h.gen != s.gen {
		return false
	}
	s.timer = nil
	s.done = nil
	return true
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
