package player

import (
	"time"

	"github.com/go-drift/player/pkg/clock"
)

// controlsHideDelay is how long the controls stay up after activity.
const controlsHideDelay = 1500 * time.Millisecond

// flashControls shows the controls and restarts the hide timer. The
// controls only hide while playing.
func (p *Player) flashControls() {
	p.state.ControlsVisible = true
	p.hideTimer = clock.StopAll(p.hideTimer)
	p.hideTimer = p.after(controlsHideDelay, func() {
		p.hideTimer = nil
		if !p.state.Playing || !p.state.ControlsVisible {
			return
		}
		p.state.ControlsVisible = false
		p.notify()
	})
}

// showControls pins the controls until the next activity.
func (p *Player) showControls() {
	p.hideTimer = clock.StopAll(p.hideTimer)
	p.state.ControlsVisible = true
}

func (p *Player) hideControls() {
	p.hideTimer = clock.StopAll(p.hideTimer)
	p.state.ControlsVisible = false
}
