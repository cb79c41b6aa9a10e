package player

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-drift/player/pkg/errors"
)

const (
	// seekStep is the jump of the keyboard and double-tap seeks, in seconds.
	seekStep = 10
	// volumeStep is the change per arrow key press.
	volumeStep = 0.1
	// castTimeout bounds a cast request.
	castTimeout = 30 * time.Second
)

// castUnsupported is the notice shown when casting fails.
const castUnsupported = "Cast not supported"

// Play requests playback.
func (p *Player) Play() {
	if p.disposed {
		return
	}
	p.command("player.Play", p.el.Play())
}

// Pause requests a pause.
func (p *Player) Pause() {
	if p.disposed {
		return
	}
	p.command("player.Pause", p.el.Pause())
}

// TogglePlay pauses a playing element and plays a paused one.
func (p *Player) TogglePlay() {
	if p.disposed {
		return
	}
	if p.el.Paused() {
		p.Play()
	} else {
		p.Pause()
	}
}

// duration is the best known duration of the current source.
func (p *Player) duration() float64 {
	if p.state.Duration > 0 {
		return p.state.Duration
	}
	return p.el.Duration()
}

func (p *Player) seekTo(op string, t float64) {
	t = clamp(t, 0, p.duration())
	p.command(op, p.el.SetCurrentTime(t))
}

// SeekRelative moves the position by delta seconds, clamped to the media.
func (p *Player) SeekRelative(delta float64) {
	if p.disposed {
		return
	}
	p.seekTo("player.SeekRelative", p.el.CurrentTime()+delta)
}

// SeekAbsolute seeks to a fraction of the duration.
func (p *Player) SeekAbsolute(fraction float64) {
	if p.disposed {
		return
	}
	p.seekTo("player.SeekAbsolute", clamp(fraction, 0, 1)*p.duration())
}

// SeekTrack seeks to the position under x on a progress track of the
// given width.
func (p *Player) SeekTrack(x, width float64) {
	if p.disposed || width <= 0 {
		return
	}
	p.seekTo("player.SeekTrack", clamp(x/width, 0, 1)*p.duration())
}

// SetVolume sets the volume, clamped to [0, 1]. A volume of zero also
// mutes, and any other volume unmutes.
func (p *Player) SetVolume(v float64) {
	if p.disposed {
		return
	}
	v = clamp(v, 0, 1)
	p.command("player.SetVolume", p.el.SetVolume(v))
	p.command("player.SetVolume", p.el.SetMuted(v == 0))
}

// stepVolume nudges the volume without touching mute.
func (p *Player) stepVolume(delta float64) {
	v := math.Round((p.el.Volume()+delta)*100) / 100
	p.command("player.stepVolume", p.el.SetVolume(clamp(v, 0, 1)))
}

// SetMuted mutes or unmutes.
func (p *Player) SetMuted(muted bool) {
	if p.disposed {
		return
	}
	p.command("player.SetMuted", p.el.SetMuted(muted))
}

// ToggleMute flips the mute state.
func (p *Player) ToggleMute() {
	if p.disposed {
		return
	}
	p.SetMuted(!p.el.Muted())
}

// SetRate selects the playback rate closest to r. While a hold gesture
// overrides the speed the selection takes effect when the hold ends.
func (p *Player) SetRate(r float64) {
	if p.disposed {
		return
	}
	r = SnapRate(r)
	if p.state.SpeedOverride {
		p.state.Rate = r
		p.notify()
		return
	}
	p.command("player.SetRate", p.el.SetPlaybackRate(r))
}

func (p *Player) beginSpeedOverride() {
	if p.disposed || p.state.SpeedOverride {
		return
	}
	p.state.SpeedOverride = true
	p.command("player.speedOverride", p.el.SetPlaybackRate(overrideRate))
	p.flashControls()
	p.notify()
}

func (p *Player) endSpeedOverride() {
	if !p.state.SpeedOverride {
		return
	}
	p.state.SpeedOverride = false
	p.command("player.speedOverride", p.el.SetPlaybackRate(p.state.Rate))
	p.notify()
}

// ToggleFullscreen asks the host to enter or leave fullscreen. The state
// changes only when the host reports it through FullscreenChanged.
func (p *Player) ToggleFullscreen() {
	if p.disposed {
		return
	}
	fs := p.opts.Fullscreen
	if fs == nil {
		p.report("player.ToggleFullscreen", errors.KindFullscreen, fmt.Errorf("fullscreen unsupported"))
		return
	}
	var err error
	if p.state.Fullscreen {
		err = fs.ExitFullscreen()
	} else {
		err = fs.RequestFullscreen()
	}
	if err != nil {
		p.report("player.ToggleFullscreen", errors.KindFullscreen, err)
	}
}

// Cast hands the current stream to the host's caster. The request runs in
// the background; a failure, or no caster at all, sets a notice.
func (p *Player) Cast() {
	if p.disposed {
		return
	}
	caster := p.opts.Caster
	if caster == nil {
		p.castFailed(fmt.Errorf("no cast target"))
		return
	}
	src := p.props.StreamURL
	epoch := p.epoch
	p.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), castTimeout)
		defer cancel()
		err := caster.Cast(ctx, src)
		if err == nil {
			return
		}
		p.dispatch(func() {
			if p.disposed || epoch != p.epoch {
				return
			}
			p.castFailed(err)
		})
	})
}

func (p *Player) castFailed(err error) {
	p.report("player.Cast", errors.KindCast, err)
	p.state.Notice = castUnsupported
	p.notify()
}

// DismissNotice clears the notice.
func (p *Player) DismissNotice() {
	if p.disposed || p.state.Notice == "" {
		return
	}
	p.state.Notice = ""
	p.notify()
}
