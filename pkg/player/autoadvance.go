package player

import (
	"time"

	"github.com/go-drift/player/pkg/clock"
)

const (
	// autoAdvanceSeconds is the length of the countdown.
	autoAdvanceSeconds = 5
	// autoAdvanceTail is how close to the end, in seconds, the countdown arms.
	autoAdvanceTail = 30
)

// Auto-advance runs this state machine:
//
//	           tail crossing / ended
//	Unarmed ─────────────────────────► Armed (5, 4, ... 1)
//	   ▲                                 │
//	   │   CancelAutoAdvance             │ countdown reaches 0
//	   ├─────────────────────────────────┤ or PlayNextNow
//	   │                                 ▼
//	   └───────────────────────────── Fired: OnNext()
//
// The tail crossing arms only when the position moves from outside the
// last 30 seconds to inside them, so cancelling inside the tail is final
// until the position leaves the tail again or the stream ends.

func (p *Player) autoAdvanceEnabled() bool {
	return !p.props.DisableAutoAdvance && p.props.OnNext != nil
}

func (p *Player) checkAutoAdvance(t float64) {
	d := p.state.Duration
	inTail := d > 0 && d-t <= autoAdvanceTail
	if inTail && !p.inTail && p.autoAdvanceEnabled() {
		p.armAutoAdvance()
	}
	p.inTail = inTail
}

func (p *Player) armAutoAdvance() {
	if p.state.AutoAdvance.Armed {
		return
	}
	p.state.AutoAdvance = AutoAdvance{Armed: true, Countdown: autoAdvanceSeconds}
	p.countdownTimer = clock.StopAll(p.countdownTimer)
	p.countdownTimer = p.every(time.Second, p.countdownTick)
}

func (p *Player) countdownTick() {
	if !p.state.AutoAdvance.Armed {
		return
	}
	p.state.AutoAdvance.Countdown--
	if p.state.AutoAdvance.Countdown <= 0 {
		p.fireAutoAdvance()
		return
	}
	p.notify()
}

func (p *Player) fireAutoAdvance() {
	p.resetAutoAdvance()
	p.notify()
	if p.props.OnNext != nil {
		p.props.OnNext()
	}
}

func (p *Player) resetAutoAdvance() {
	p.countdownTimer = clock.StopAll(p.countdownTimer)
	p.state.AutoAdvance = AutoAdvance{}
}

// CancelAutoAdvance stops the countdown without advancing.
func (p *Player) CancelAutoAdvance() {
	if p.disposed || !p.state.AutoAdvance.Armed {
		return
	}
	p.resetAutoAdvance()
	p.notify()
}

// PlayNextNow skips the rest of the countdown.
func (p *Player) PlayNextNow() {
	if p.disposed || p.props.OnNext == nil {
		return
	}
	p.fireAutoAdvance()
}
