package player

import (
	"strings"

	"github.com/go-drift/player/pkg/gestures"
)

// KeyEvent is a keyboard event. Key follows the DOM naming: " " for the
// space bar, "ArrowLeft", single letters, and so on.
type KeyEvent struct {
	Key    string
	Repeat bool
	// InTextInput marks events aimed at a text field. They are ignored.
	InTextInput bool
}

// KeySpace is the hold-for-speed key.
const KeySpace = " "

// KeyDown handles a key press and reports whether the key was consumed.
//
//	space          tap: play/pause, hold 500ms: 2x until released
//	k              play/pause
//	j, ArrowLeft   back 10s
//	l, ArrowRight  forward 10s
//	ArrowUp/Down   volume +/- 0.1
//	f              fullscreen
//	m              mute
//	n, p           next/previous episode, when available
func (p *Player) KeyDown(e KeyEvent) bool {
	if p.disposed || e.InTextInput {
		return false
	}
	if e.Key == KeySpace {
		if !e.Repeat {
			p.keyHold.Down()
		}
		return true
	}

	switch strings.ToLower(e.Key) {
	case "k":
		p.TogglePlay()
		p.flashControls()
	case "j", "arrowleft":
		p.SeekRelative(-seekStep)
		p.flashControls()
	case "l", "arrowright":
		p.SeekRelative(seekStep)
		p.flashControls()
	case "arrowup":
		p.stepVolume(volumeStep)
	case "arrowdown":
		p.stepVolume(-volumeStep)
	case "f":
		p.ToggleFullscreen()
	case "m":
		p.ToggleMute()
	case "n":
		if p.props.OnNext == nil {
			return false
		}
		p.Next()
	case "p":
		if p.props.OnPrevious == nil {
			return false
		}
		p.Previous()
	default:
		return false
	}
	p.notify()
	return true
}

// KeyUp handles a key release and reports whether it was consumed.
func (p *Player) KeyUp(e KeyEvent) bool {
	if p.disposed || e.Key != KeySpace {
		return false
	}
	switch p.keyHold.Up() {
	case gestures.HoldTap:
		p.TogglePlay()
		p.flashControls()
		p.notify()
	case gestures.HoldReleased:
		p.endSpeedOverride()
	}
	return true
}
