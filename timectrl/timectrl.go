package timectrl

import (
	"sync"
	"time"
)

// SimClock is an interface for accessing simulation time. Components that
// only need to read or pause the clock (the selection machine, the
// ephemeris driver) depend on this abstraction rather than the concrete
// controller, which keeps them testable.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
	// Paused reports whether simulation time is currently held.
	Paused() bool
	// Pause takes one pause hold on the clock. The clock stops advancing
	// while at least one hold is outstanding.
	Pause()
	// Resume releases one pause hold. Releasing with no outstanding holds
	// is a no-op.
	Resume()
}

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// RealTime advances according to wall-clock time.
	RealTime Mode = iota
	// Accelerated advances as quickly as the loop can run while still stepping by Tick.
	Accelerated
)

// TimeController drives simulation time and notifies registered listeners on
// every advance. Pause holds are counted: several owners may pause
// independently and the clock resumes only when the last hold is released.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	currentTime time.Time
	pauseHolds  int

	listeners []func(time.Time)
}

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the current simulation time. Implements SimClock.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// SetTime jumps the simulation clock to a specific time. Intended for tests
// and scenario setup.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	tc.currentTime = t
	tc.mu.Unlock()
}

// Paused reports whether at least one pause hold is outstanding.
func (tc *TimeController) Paused() bool {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.pauseHolds > 0
}

// Pause takes one pause hold.
func (tc *TimeController) Pause() {
	tc.mu.Lock()
	tc.pauseHolds++
	tc.mu.Unlock()
}

// Resume releases one pause hold; releasing with none outstanding is a no-op.
func (tc *TimeController) Resume() {
	tc.mu.Lock()
	if tc.pauseHolds > 0 {
		tc.pauseHolds--
	}
	tc.mu.Unlock()
}

// AddListener registers a callback invoked on every advance. Listeners are
// not called while the clock is paused.
func (tc *TimeController) AddListener(fn func(time.Time)) {
	tc.mu.Lock()
	tc.listeners = append(tc.listeners, fn)
	tc.mu.Unlock()
}

// Advance steps simulation time by one tick unless paused, notifying
// listeners. It returns the new simulation time and whether the step
// happened.
func (tc *TimeController) Advance() (time.Time, bool) {
	tc.mu.Lock()
	if tc.pauseHolds > 0 {
		now := tc.currentTime
		tc.mu.Unlock()
		return now, false
	}
	tc.currentTime = tc.currentTime.Add(tc.Tick)
	now := tc.currentTime
	listeners := make([]func(time.Time), len(tc.listeners))
	copy(listeners, tc.listeners)
	tc.mu.Unlock()

	for _, fn := range listeners {
		fn(now)
	}
	return now, true
}

// Start runs the controller for the specified duration in a separate
// goroutine. It returns a channel that is closed when the controller
// finishes. While paused, wall-clock ticks elapse but simulation time holds
// still.
func (tc *TimeController) Start(duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		tc.mu.Lock()
		tc.currentTime = tc.StartTime
		tc.mu.Unlock()

		elapsed := time.Duration(0)

		// In both modes we use a ticker for simplicity and determinism.
		ticker := time.NewTicker(tc.Tick)
		defer ticker.Stop()

		for {
			if duration > 0 && elapsed >= duration {
				return
			}

			<-ticker.C
			elapsed += tc.Tick
			tc.Advance()
		}
	}()
	return done
}
