package theming

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler runs at most one pending callback. Arm replaces whatever was pending.
type Scheduler interface {
	Arm(delay time.Duration, fn func())
	Cancel()
}

// TimerScheduler is a Scheduler backed by clock timers. Callbacks run on their own goroutine.
type TimerScheduler struct {
	clock clockwork.Clock

	mu    sync.Mutex
	timer clockwork.Timer
	gen   uint64
}

func NewTimerScheduler(clock clockwork.Clock) *TimerScheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TimerScheduler{clock: clock}
}

func (s *TimerScheduler) Arm(delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	gen := s.gen
	s.timer = s.clock.AfterFunc(delay, func() {
		s.mu.Lock()
		// A timer that fired while being replaced or cancelled is stale.
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		fn()
	})
}

func (s *TimerScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Pending reports whether a callback is armed and has not fired.
func (s *TimerScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *TimerScheduler) stopLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
