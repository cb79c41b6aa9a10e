// Package clock provides the time source and the single-threaded run loop
// the player is driven from.
//
// Every callback the player receives (media element events, timer expiry,
// background job results) is delivered through one dispatch function, so
// player state is only ever touched from one goroutine. Tests substitute a
// synchronous dispatch and a fake clock (see the testing package).
package clock

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the
	// call stopped the timer, false if it already fired or was stopped.
	Stop() bool
}

// Clock provides time and timer scheduling.
type Clock interface {
	Now() time.Time
	// AfterFunc schedules f to run once after d.
	AfterFunc(d time.Duration, f func()) Timer
}

// System returns a Clock backed by the wall clock. Timer callbacks are
// handed to dispatch rather than run on the runtime's timer goroutine.
// A timer stopped after it expired but before dispatch ran the callback
// still never runs it.
func System(dispatch func(func())) Clock {
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}
	return systemClock{dispatch: dispatch}
}

type systemClock struct {
	dispatch func(func())
}

func (systemClock) Now() time.Time { return time.Now() }

func (c systemClock) AfterFunc(d time.Duration, f func()) Timer {
	st := &systemTimer{}
	st.t = time.AfterFunc(d, func() {
		c.dispatch(func() {
			if st.stopped.Load() {
				return
			}
			st.fired.Store(true)
			f()
		})
	})
	return st
}

type systemTimer struct {
	t       *time.Timer
	stopped atomic.Bool
	fired   atomic.Bool
}

func (t *systemTimer) Stop() bool {
	if t.stopped.Swap(true) {
		return false
	}
	t.t.Stop()
	return !t.fired.Load()
}

// Every calls f every d until the returned Timer is stopped. The first call
// happens after one full interval.
func Every(c Clock, d time.Duration, f func()) Timer {
	r := &repeating{clock: c, interval: d, fn: f}
	r.schedule()
	return r
}

type repeating struct {
	clock    Clock
	interval time.Duration
	fn       func()

	mu      sync.Mutex
	current Timer
	stopped bool
}

func (r *repeating) schedule() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.current = r.clock.AfterFunc(r.interval, r.tick)
}

func (r *repeating) tick() {
	r.mu.Lock()
	stopped := r.stopped
	r.mu.Unlock()
	if stopped {
		return
	}
	r.fn()
	r.schedule()
}

func (r *repeating) Stop() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return false
	}
	r.stopped = true
	if r.current != nil {
		r.current.Stop()
	}
	return true
}

// StopAll stops every non-nil timer and returns nil, for clearing a handle
// field in one statement.
func StopAll(timers ...Timer) Timer {
	for _, t := range timers {
		if t != nil {
			t.Stop()
		}
	}
	return nil
}
