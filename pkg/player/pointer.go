package player

import (
	"time"

	"github.com/go-drift/player/pkg/clock"
	"github.com/go-drift/player/pkg/gestures"
)

// rippleDuration is how long a double-tap ripple stays visible.
const rippleDuration = 600 * time.Millisecond

// PointerKind distinguishes mouse from touch input.
type PointerKind int

const (
	PointerMouse PointerKind = iota
	PointerTouch
)

// PointerEvent locates a pointer on the player surface.
type PointerEvent struct {
	X     float64
	Width float64
	Kind  PointerKind
}

// PointerDown starts a touch press. Holding it engages 2x playback.
func (p *Player) PointerDown(e PointerEvent) {
	if p.disposed || e.Kind != PointerTouch {
		return
	}
	p.touchHold.Down()
}

// PointerUp ends a touch press. Releasing a hold restores the rate.
// Otherwise the tap closes an open settings panel or feeds double-tap
// detection: two taps on one half within 300ms seek 10s that way.
func (p *Player) PointerUp(e PointerEvent) {
	if p.disposed || e.Kind != PointerTouch {
		return
	}
	if p.touchHold.Up() == gestures.HoldReleased {
		p.endSpeedOverride()
		return
	}
	if p.state.SettingsOpen {
		p.CloseSettings()
		return
	}
	p.taps.Tap(gestures.SideOf(e.X, e.Width))
}

func (p *Player) doubleTapSeek(side gestures.Side) {
	if side == gestures.SideRight {
		p.SeekRelative(seekStep)
	} else {
		p.SeekRelative(-seekStep)
	}
	p.state.Ripple = Ripple{Active: true, Side: side, Seq: p.state.Ripple.Seq + 1}
	p.rippleTimer = clock.StopAll(p.rippleTimer)
	p.rippleTimer = p.after(rippleDuration, func() {
		p.rippleTimer = nil
		p.state.Ripple.Active = false
		p.notify()
	})
	p.notify()
}

// PointerMove shows the controls on mouse movement.
func (p *Player) PointerMove(e PointerEvent) {
	if p.disposed || e.Kind == PointerTouch {
		return
	}
	p.flashControls()
	p.notify()
}

// PointerLeave hides the controls when the mouse leaves the surface.
func (p *Player) PointerLeave() {
	if p.disposed {
		return
	}
	p.hideControls()
	p.notify()
}

// Click handles a mouse click on the surface: it closes the settings
// panel if open and otherwise hides the controls. It never toggles
// playback.
func (p *Player) Click() {
	if p.disposed {
		return
	}
	if p.state.SettingsOpen {
		p.CloseSettings()
		return
	}
	p.hideControls()
	p.notify()
}

// HoverTrack records the position under the pointer on a progress track
// of the given width.
func (p *Player) HoverTrack(x, width float64) {
	if p.disposed || width <= 0 || p.state.Duration <= 0 {
		return
	}
	p.state.Hovering = true
	p.state.HoverTime = clamp(x/width, 0, 1) * p.state.Duration
	p.notify()
}

// LeaveTrack clears the hover position.
func (p *Player) LeaveTrack() {
	if p.disposed || !p.state.Hovering {
		return
	}
	p.state.Hovering = false
	p.state.HoverTime = 0
	p.notify()
}

// HoverPreview returns the thumbnail for the hovered position.
func (p *Player) HoverPreview() ([]byte, bool) {
	if !p.state.Hovering {
		return nil, false
	}
	return p.PreviewAt(p.state.HoverTime)
}
