// Package player implements a video player layered over a [media.Element].
//
// The player adds buffering-health detection, keyboard and touch
// transport gestures, scrub-preview thumbnails, an ambient backdrop,
// optional audio compression ("stable voice") and auto-advance to the
// next episode. Commands are requests to the element; [State] is only
// updated from element events and the player's own timers, and every
// change is pushed to listeners registered with [Player.AddListener].
//
// A Player is not safe for concurrent use. Create it on the loop that
// delivers element events and call every method from that loop:
//
//	loop := clock.NewLoop(0)
//	el, err := mpv.Start(ctx, mpv.Config{Dispatch: loop.Dispatch})
//	...
//	p := player.New(el, player.Options{Dispatch: loop.Dispatch})
//	p.AddListener(render)
//	p.SetProps(player.Props{StreamURL: url, OnNext: next})
//
// Every timer the player starts is owned by it and is stopped on
// [Player.Dispose] and when the stream URL changes. Callbacks from a
// replaced stream are ignored.
package player

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/go-drift/player/pkg/audio"
	"github.com/go-drift/player/pkg/clock"
	"github.com/go-drift/player/pkg/errors"
	"github.com/go-drift/player/pkg/gestures"
	"github.com/go-drift/player/pkg/media"
)

// SkipWindow is a [Start, End) span of an episode, in seconds.
type SkipWindow struct {
	Start float64
	End   float64
}

// Contains reports whether t falls inside the window. A nil window
// contains nothing.
func (w *SkipWindow) Contains(t float64) bool {
	return w != nil && t >= w.Start && t < w.End
}

// ServerOption is one mirror serving a quality.
type ServerOption struct {
	Name      string
	StreamURL string
	// StreamKind describes the stream, for example "mp4" or "hls".
	StreamKind string
}

// QualityOption is a selectable resolution with its mirrors.
type QualityOption struct {
	Label    string
	FileSize string
	Servers  []ServerOption
}

// Props is the host-supplied configuration for the current episode.
// Replace it wholesale with [Player.SetProps].
type Props struct {
	StreamURL string
	Title     string

	// OnPrevious and OnNext move between episodes. A nil OnNext also
	// disables auto-advance and the skip-outro action.
	OnPrevious func()
	OnNext     func()
	// OnTimeUpdate is called on every time update with the position and
	// duration in seconds.
	OnTimeUpdate func(t, duration float64)

	// InitialSeekSeconds is applied once per stream, when its duration
	// becomes known.
	InitialSeekSeconds float64

	Intro *SkipWindow
	Outro *SkipWindow

	// DisableAutoAdvance turns off the end-of-episode countdown.
	DisableAutoAdvance bool

	QualityOptions []QualityOption
	ActiveQuality  string
	ActiveServer   string
	// OnQualityChange and OnServerChange put selection under host
	// control. When nil the player resolves the new URL itself from
	// QualityOptions.
	OnQualityChange func(label string)
	OnServerChange  func(name string)
}

// Fullscreen is the host's presentation surface. The host reports the
// resulting change with [Player.FullscreenChanged].
type Fullscreen interface {
	RequestFullscreen() error
	ExitFullscreen() error
}

// Caster hands a stream to a remote display.
type Caster interface {
	Cast(ctx context.Context, streamURL string) error
}

// Options carries the player's collaborators. Only the zero-value
// defaults documented on each field are assumed.
type Options struct {
	// Clock schedules timers. Defaults to clock.System(Dispatch).
	Clock clock.Clock
	// Dispatch runs a function on the player's loop. Background results
	// (preview frames, cast outcomes) are posted through it. Defaults to
	// calling the function inline.
	Dispatch func(func())
	// Spawn starts background work. Defaults to a new goroutine.
	Spawn func(func())

	// Sampler decodes preview frames. Nil disables previews.
	Sampler media.FrameSampler
	// PreviewConcurrency bounds simultaneous preview decodes. Defaults to 2.
	PreviewConcurrency int
	// PreviewTimeout bounds a single preview decode. Defaults to 10s.
	PreviewTimeout time.Duration

	// AudioFactory builds the stable voice audio context. Nil leaves
	// stable voice unsupported.
	AudioFactory audio.Factory

	Fullscreen Fullscreen
	Caster     Caster
}

// Player drives one media element. See the package documentation.
type Player struct {
	el       media.Element
	clock    clock.Clock
	dispatch func(func())
	spawn    func(func())
	opts     Options

	props     Props
	sourceSet bool
	state     State
	// epoch increases on every source change and on Dispose. Timer and
	// background callbacks capture it and do nothing once it moved on.
	epoch    uint64
	disposed bool

	listeners      map[int]func(State)
	nextListenerID int

	hideTimer      clock.Timer
	rippleTimer    clock.Timer
	countdownTimer clock.Timer
	bufferTimer    clock.Timer
	ambientTimer   clock.Timer
	previewTimers  []clock.Timer

	keyHold   gestures.HoldRecognizer
	touchHold gestures.HoldRecognizer
	taps      gestures.DoubleTapRecognizer

	// Per-source bookkeeping.
	initialSeekDone   bool
	previewsScheduled bool
	inTail            bool
	pendingResume     *resumePoint

	previews      *PreviewCache
	previewSem    *semaphore.Weighted
	previewCtx    context.Context
	previewCancel context.CancelFunc

	ambient *ambientRenderer
	voice   audio.StableVoice
}

// resumePoint is where playback continues after a quality or server switch.
type resumePoint struct {
	at   float64
	play bool
}

// New creates a player that owns el. Call [Player.SetProps] to load the
// first stream.
func New(el media.Element, opts Options) *Player {
	p := &Player{
		el:        el,
		opts:      opts,
		dispatch:  opts.Dispatch,
		spawn:     opts.Spawn,
		clock:     opts.Clock,
		state:     initialState(),
		listeners: make(map[int]func(State)),
		previews:  NewPreviewCache(),
	}
	if p.dispatch == nil {
		p.dispatch = func(f func()) { f() }
	}
	if p.spawn == nil {
		p.spawn = func(f func()) { go f() }
	}
	if p.clock == nil {
		p.clock = clock.System(p.dispatch)
	}
	if p.opts.PreviewConcurrency <= 0 {
		p.opts.PreviewConcurrency = defaultPreviewConcurrency
	}
	if p.opts.PreviewTimeout <= 0 {
		p.opts.PreviewTimeout = defaultPreviewTimeout
	}
	p.previewSem = semaphore.NewWeighted(int64(p.opts.PreviewConcurrency))
	p.previewCtx, p.previewCancel = context.WithCancel(context.Background())
	p.ambient = newAmbientRenderer()
	p.voice = audio.StableVoice{Factory: opts.AudioFactory}

	p.keyHold = gestures.HoldRecognizer{Clock: p.clock, OnHold: p.beginSpeedOverride}
	p.touchHold = gestures.HoldRecognizer{Clock: p.clock, OnHold: p.beginSpeedOverride}
	p.taps = gestures.DoubleTapRecognizer{
		Clock:       p.clock,
		OnSingleTap: func(gestures.Side) { p.flashControls(); p.notify() },
		OnDoubleTap: p.doubleTapSeek,
	}

	p.state.Volume = el.Volume()
	p.state.Muted = el.Muted()
	el.SetEventHandler(p.handleEvent)
	return p
}

// State returns a snapshot of the current state.
func (p *Player) State() State {
	return p.state
}

// Props returns the current props.
func (p *Player) Props() Props {
	return p.props
}

// AddListener registers fn to receive every state change and returns a
// function that removes it.
func (p *Player) AddListener(fn func(State)) func() {
	if p.disposed {
		return func() {}
	}
	id := p.nextListenerID
	p.nextListenerID++
	p.listeners[id] = fn
	return func() {
		delete(p.listeners, id)
	}
}

func (p *Player) notify() {
	if p.disposed {
		return
	}
	s := p.state
	for _, listener := range p.listeners {
		listener(s)
	}
}

// SetProps replaces the props. A changed stream URL resets all
// per-stream state and loads the new source.
func (p *Player) SetProps(props Props) {
	if p.disposed {
		return
	}
	prev := p.props
	p.props = props
	if !p.sourceSet || props.StreamURL != prev.StreamURL {
		p.sourceSet = true
		// A resume point belongs to a quality or server switch. A new URL
		// for the same selection is a different episode.
		if props.ActiveQuality == prev.ActiveQuality && props.ActiveServer == prev.ActiveServer {
			p.pendingResume = nil
		}
		p.loadSource(props.StreamURL)
	} else {
		p.updateSkipWindows(p.state.CurrentTime)
		if p.state.AutoAdvance.Armed && !p.autoAdvanceEnabled() {
			p.resetAutoAdvance()
		}
	}
	p.notify()
}

// Dispose stops every timer, releases the audio graph and closes the
// element. The player ignores all calls afterwards.
func (p *Player) Dispose() {
	if p.disposed {
		return
	}
	p.stopSourceTimers()
	p.ambientTimer = clock.StopAll(p.ambientTimer)
	p.keyHold.Cancel()
	p.touchHold.Cancel()
	p.previewCancel()
	p.voice.Release()
	p.epoch++
	p.disposed = true
	p.listeners = nil

	p.el.SetEventHandler(nil)
	if err := p.el.Close(); err != nil {
		p.report("player.Dispose", errors.KindMedia, err)
	}
}

// guard wraps a timer or background callback so it only runs while the
// source it was scheduled for is still current.
func (p *Player) guard(f func()) func() {
	epoch := p.epoch
	return func() {
		if p.disposed || epoch != p.epoch {
			return
		}
		f()
	}
}

func (p *Player) after(d time.Duration, f func()) clock.Timer {
	return p.clock.AfterFunc(d, p.guard(f))
}

func (p *Player) every(d time.Duration, f func()) clock.Timer {
	return clock.Every(p.clock, d, p.guard(f))
}

// stopSourceTimers clears every timer tied to the current source.
func (p *Player) stopSourceTimers() {
	p.hideTimer = clock.StopAll(p.hideTimer)
	p.rippleTimer = clock.StopAll(p.rippleTimer)
	p.countdownTimer = clock.StopAll(p.countdownTimer)
	p.bufferTimer = clock.StopAll(p.bufferTimer)
	clock.StopAll(p.previewTimers...)
	p.previewTimers = nil
	p.taps.Cancel()
}

// loadSource is the source-change transition.
func (p *Player) loadSource(url string) {
	p.epoch++
	p.stopSourceTimers()
	p.keyHold.Cancel()
	p.touchHold.Cancel()

	p.previewCancel()
	p.previewCtx, p.previewCancel = context.WithCancel(context.Background())
	p.previews.Clear()

	p.initialSeekDone = false
	p.previewsScheduled = false
	p.inTail = false

	overridden := p.state.SpeedOverride
	p.state.resetForSource()

	if url == "" {
		p.pendingResume = nil
		p.state.NoStream = true
		p.state.Loading = false
		if p.el.Src() != "" {
			if err := p.el.Load(""); err != nil {
				p.report("player.Load", errors.KindMedia, err)
			}
		}
		return
	}

	if err := p.el.Load(url); err != nil {
		p.report("player.Load", errors.KindMedia, err)
		return
	}
	if overridden || p.el.PlaybackRate() != p.state.Rate {
		p.command("player.SetRate", p.el.SetPlaybackRate(p.state.Rate))
	}
	p.startBufferMonitor()
}

// FullscreenChanged records the host's fullscreen state.
func (p *Player) FullscreenChanged(active bool) {
	if p.disposed || p.state.Fullscreen == active {
		return
	}
	p.state.Fullscreen = active
	p.notify()
}

func (p *Player) report(op string, kind errors.Kind, err error) {
	errors.Report(&errors.PlayerError{
		Op:     op,
		Kind:   kind,
		Source: p.props.StreamURL,
		Err:    err,
	})
}

// command reports a failed element command.
func (p *Player) command(op string, err error) {
	if err != nil {
		p.report(op, errors.KindMedia, err)
	}
}

func (p *Player) handleEvent(ev media.Event) {
	if p.disposed {
		return
	}
	switch ev.Type {
	case media.EventTimeUpdate:
		p.onTimeUpdate()
	case media.EventLoadedMetadata:
		p.onLoadedMetadata()
	case media.EventWaiting:
		p.state.Loading = true
	case media.EventCanPlay:
		p.state.Loading = false
	case media.EventPlay:
		p.state.Playing = true
		p.state.Ended = false
		p.flashControls()
	case media.EventPause:
		p.state.Playing = false
		p.showControls()
	case media.EventEnded:
		p.state.Playing = false
		p.state.Ended = true
		if p.autoAdvanceEnabled() {
			p.armAutoAdvance()
		}
	case media.EventRateChange:
		if !p.state.SpeedOverride {
			p.state.Rate = SnapRate(p.el.PlaybackRate())
		}
	case media.EventVolumeChange:
		p.state.Volume = clamp(p.el.Volume(), 0, 1)
		p.state.Muted = p.el.Muted()
	case media.EventSeeked:
		p.state.CurrentTime = p.position()
	case media.EventError:
		p.report("player.element", errors.KindMedia, fmt.Errorf("%s: %s", ev.Code, ev.Message))
	}
	p.notify()
}

// position reads the element's time clamped to the known duration.
func (p *Player) position() float64 {
	t := p.el.CurrentTime()
	if p.state.Duration > 0 {
		return clamp(t, 0, p.state.Duration)
	}
	return math.Max(t, 0)
}

func (p *Player) onTimeUpdate() {
	t := p.position()
	p.state.CurrentTime = t
	p.state.BufferedEnd = p.el.Buffered().End()
	if p.props.OnTimeUpdate != nil {
		p.props.OnTimeUpdate(t, p.state.Duration)
	}
	p.updateSkipWindows(t)
	p.checkAutoAdvance(t)
}

func (p *Player) onLoadedMetadata() {
	p.state.Duration = p.el.Duration()
	p.state.Loading = false

	switch {
	case p.pendingResume != nil:
		resume := *p.pendingResume
		p.pendingResume = nil
		p.initialSeekDone = true
		p.command("player.resume", p.el.SetCurrentTime(clamp(resume.at, 0, p.state.Duration)))
		if resume.play {
			p.command("player.resume", p.el.Play())
		}
	case !p.initialSeekDone && p.props.InitialSeekSeconds > 0 && p.state.Duration > 0:
		p.initialSeekDone = true
		p.command("player.initialSeek", p.el.SetCurrentTime(clamp(p.props.InitialSeekSeconds, 0, p.state.Duration)))
	}

	p.schedulePreviews()
}
