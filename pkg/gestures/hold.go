// Package gestures provides clock-driven recognizers that turn raw press
// and release events into hold and double-tap gestures.
//
// Each recognizer is an explicit state machine owning at most one timer.
// Starting a new gesture clears any timer left by the previous one, and
// [HoldRecognizer.Cancel] / [DoubleTapRecognizer.Cancel] clear it on
// teardown.
package gestures

import (
	"time"

	"github.com/go-drift/player/pkg/clock"
)

// DefaultHoldThreshold is how long a press must last to count as a hold.
const DefaultHoldThreshold = 500 * time.Millisecond

// HoldState is the state of a HoldRecognizer.
//
//	        Down()            threshold
//	Idle ──────────► Holding ──────────► Overridden
//	 ▲                  │                    │
//	 │   Up(): Tap      │                    │ Up(): Released
//	 └──────────────────┴────────────────────┘
type HoldState int

const (
	// HoldIdle means no press is in progress.
	HoldIdle HoldState = iota
	// HoldHolding means a press started and the threshold has not elapsed.
	HoldHolding
	// HoldOverridden means the threshold elapsed while still pressed.
	HoldOverridden
)

func (s HoldState) String() string {
	switch s {
	case HoldIdle:
		return "idle"
	case HoldHolding:
		return "holding"
	case HoldOverridden:
		return "overridden"
	default:
		return "unknown"
	}
}

// HoldResult describes how a press ended.
type HoldResult int

const (
	// HoldNone means Up arrived without a matching Down.
	HoldNone HoldResult = iota
	// HoldTap means the press was released before the threshold.
	HoldTap
	// HoldReleased means the press was released after OnHold fired.
	HoldReleased
)

// HoldRecognizer distinguishes a short tap from a press-and-hold using a
// single timer armed on Down and cleared on Up.
type HoldRecognizer struct {
	Clock clock.Clock
	// Threshold defaults to DefaultHoldThreshold.
	Threshold time.Duration
	// OnHold is called when the threshold elapses while pressed.
	OnHold func()

	state HoldState
	timer clock.Timer
}

// State returns the current state.
func (r *HoldRecognizer) State() HoldState { return r.state }

// Down starts a press. It reports false and does nothing if a press is
// already in progress (key repeat).
func (r *HoldRecognizer) Down() bool {
	if r.state != HoldIdle {
		return false
	}
	threshold := r.Threshold
	if threshold <= 0 {
		threshold = DefaultHoldThreshold
	}
	r.timer = clock.StopAll(r.timer)
	r.state = HoldHolding
	r.timer = r.Clock.AfterFunc(threshold, r.fire)
	return true
}

func (r *HoldRecognizer) fire() {
	r.timer = nil
	if r.state != HoldHolding {
		return
	}
	r.state = HoldOverridden
	if r.OnHold != nil {
		r.OnHold()
	}
}

// Up ends the press and reports how it ended.
func (r *HoldRecognizer) Up() HoldResult {
	r.timer = clock.StopAll(r.timer)
	prev := r.state
	r.state = HoldIdle
	switch prev {
	case HoldHolding:
		return HoldTap
	case HoldOverridden:
		return HoldReleased
	default:
		return HoldNone
	}
}

// Cancel abandons any press without reporting a result.
func (r *HoldRecognizer) Cancel() {
	r.timer = clock.StopAll(r.timer)
	r.state = HoldIdle
}
