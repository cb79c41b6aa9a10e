package gestures

import (
	"time"

	"github.com/go-drift/player/pkg/clock"
)

// DefaultDoubleTapWindow is the maximum gap between the taps of a double tap.
const DefaultDoubleTapWindow = 300 * time.Millisecond

// Side is the half of a surface a tap landed on.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// SideOf returns SideLeft when x lies left of the midline of a surface of
// the given width.
func SideOf(x, width float64) Side {
	if x < width/2 {
		return SideLeft
	}
	return SideRight
}

// DoubleTapState is the state of a DoubleTapRecognizer.
type DoubleTapState int

const (
	// DoubleTapIdle means no tap is pending.
	DoubleTapIdle DoubleTapState = iota
	// DoubleTapTappedOnce means one tap landed and the window is open.
	DoubleTapTappedOnce
)

// DoubleTapRecognizer resolves taps into single or double taps per side.
//
// A second tap on the same side inside the window fires OnDoubleTap and
// cancels the pending single tap. Otherwise OnSingleTap fires for the
// latest tap once its window closes.
type DoubleTapRecognizer struct {
	Clock clock.Clock
	// Window defaults to DefaultDoubleTapWindow.
	Window      time.Duration
	OnSingleTap func(Side)
	OnDoubleTap func(Side)

	state DoubleTapState
	side  Side
	last  time.Time
	timer clock.Timer
}

// State returns the current state.
func (r *DoubleTapRecognizer) State() DoubleTapState { return r.state }

func (r *DoubleTapRecognizer) window() time.Duration {
	if r.Window <= 0 {
		return DefaultDoubleTapWindow
	}
	return r.Window
}

// Tap feeds a completed tap on side.
func (r *DoubleTapRecognizer) Tap(side Side) {
	now := r.Clock.Now()
	if r.state == DoubleTapTappedOnce && side == r.side && now.Sub(r.last) < r.window() {
		r.timer = clock.StopAll(r.timer)
		r.state = DoubleTapIdle
		if r.OnDoubleTap != nil {
			r.OnDoubleTap(side)
		}
		return
	}

	r.timer = clock.StopAll(r.timer)
	r.state = DoubleTapTappedOnce
	r.side = side
	r.last = now
	r.timer = r.Clock.AfterFunc(r.window(), func() {
		r.timer = nil
		r.state = DoubleTapIdle
		if r.OnSingleTap != nil {
			r.OnSingleTap(side)
		}
	})
}

// Cancel drops any pending tap without reporting it.
func (r *DoubleTapRecognizer) Cancel() {
	r.timer = clock.StopAll(r.timer)
	r.state = DoubleTapIdle
}
