package player

import (
	"image/color"
	"math"

	"github.com/go-drift/player/pkg/gestures"
	"github.com/go-drift/player/pkg/media"
)

// Rates are the selectable playback rates.
var Rates = []float64{0.5, 0.75, 1, 1.25, 1.5, 2}

// overrideRate is the rate engaged while a hold gesture is active.
const overrideRate = 2

// SnapRate returns the entry of Rates closest to r.
func SnapRate(r float64) float64 {
	best := Rates[0]
	for _, candidate := range Rates[1:] {
		if math.Abs(candidate-r) < math.Abs(best-r) {
			best = candidate
		}
	}
	return best
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// SettingsTab is the page shown by the settings panel.
//
//	       OpenSettingsTab            SettingsBack
//	Main ─────────────────► Quality ───────────────► Main
//	  │                                               ▲
//	  └────────────────────► Server ──────────────────┘
type SettingsTab int

const (
	TabMain SettingsTab = iota
	TabQuality
	TabServer
)

func (t SettingsTab) String() string {
	switch t {
	case TabMain:
		return "main"
	case TabQuality:
		return "quality"
	case TabServer:
		return "server"
	default:
		return "unknown"
	}
}

// AutoAdvance is the countdown shown before the next episode starts.
type AutoAdvance struct {
	Armed bool
	// Countdown is the number of seconds left while Armed.
	Countdown int
}

// Ripple marks a double-tap seek animation. Seq increases with every
// double tap so consecutive ripples on the same side can be told apart.
type Ripple struct {
	Active bool
	Side   gestures.Side
	Seq    int
}

// State is a snapshot of everything the player renders.
type State struct {
	Playing bool
	Ended   bool
	Muted   bool
	// Volume is in [0, 1].
	Volume float64
	// Rate is the user-selected rate, one of Rates.
	Rate float64
	// SpeedOverride is true while a hold gesture forces 2x playback.
	SpeedOverride bool

	CurrentTime float64
	Duration    float64
	BufferedEnd float64
	Loading     bool
	// NoStream is set when the host supplied an empty stream URL.
	NoStream bool

	ControlsVisible bool
	SettingsOpen    bool
	SettingsTab     SettingsTab

	ShowSkipIntro bool
	ShowSkipOutro bool

	BufferHealthy bool
	AutoAdvance   AutoAdvance
	Ripple        Ripple
	// Notice is a short message for the user, such as a cast failure.
	Notice string

	// Hovering is true while the pointer is over the progress track, and
	// HoverTime is the position under it.
	Hovering  bool
	HoverTime float64

	AmbientEnabled bool
	AmbientOpacity float64
	// Glow is the average colour of the latest ambient frame.
	Glow color.RGBA

	StableVoice bool
	Fullscreen  bool
}

// EffectiveRate is the rate the element is actually playing at.
func (s State) EffectiveRate() float64 {
	if s.SpeedOverride {
		return overrideRate
	}
	return s.Rate
}

// Status summarizes the state for display.
func (s State) Status() media.PlaybackState {
	switch {
	case s.NoStream:
		return media.PlaybackStateIdle
	case s.Loading:
		return media.PlaybackStateBuffering
	case s.Playing:
		return media.PlaybackStatePlaying
	case s.Ended:
		return media.PlaybackStateCompleted
	case s.Duration == 0:
		return media.PlaybackStateIdle
	default:
		return media.PlaybackStatePaused
	}
}

func initialState() State {
	return State{
		Volume:          1,
		Rate:            1,
		Loading:         true,
		ControlsVisible: true,
		BufferHealthy:   true,
	}
}

// resetForSource clears everything tied to the previous stream. User
// preferences (volume, rate, ambient, stable voice, fullscreen) survive.
func (s *State) resetForSource() {
	s.Playing = false
	s.Ended = false
	s.SpeedOverride = false
	s.CurrentTime = 0
	s.Duration = 0
	s.BufferedEnd = 0
	s.Loading = true
	s.NoStream = false
	s.ControlsVisible = true
	s.ShowSkipIntro = false
	s.ShowSkipOutro = false
	s.BufferHealthy = true
	s.AutoAdvance = AutoAdvance{}
	s.Ripple.Active = false
	s.Notice = ""
	s.Hovering = false
	s.HoverTime = 0
}
