package testing

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/go-drift/player/pkg/media"
)

// FakeElement is a scriptable media.Element. Commands update state and
// emit the corresponding events synchronously, the way a browser element
// would once the request completes. Script methods ([FakeElement.LoadMetadata],
// [FakeElement.Tick], [FakeElement.End]) stand in for the media pipeline.
type FakeElement struct {
	mu sync.Mutex

	src      string
	current  float64
	duration float64
	paused   bool
	ended    bool
	volume   float64
	muted    bool
	rate     float64
	buffered media.TimeRanges
	closed   bool

	handler func(media.Event)

	// Calls records every command in order, e.g. "Play", "SetCurrentTime(300)".
	Calls []string

	// PlayErr is returned by Play when set.
	PlayErr error

	// Frame is returned by CurrentFrame. Nil reports an error.
	Frame image.Image
}

var (
	_ media.Element     = (*FakeElement)(nil)
	_ media.FrameReader = (*FakeElement)(nil)
)

// NewFakeElement returns an idle, paused element at full volume.
func NewFakeElement() *FakeElement {
	return &FakeElement{paused: true, volume: 1, rate: 1}
}

func (e *FakeElement) record(format string, args ...any) {
	e.Calls = append(e.Calls, fmt.Sprintf(format, args...))
}

func (e *FakeElement) emit(typ media.EventType) {
	e.mu.Lock()
	h := e.handler
	e.mu.Unlock()
	if h != nil {
		h(media.Event{Type: typ})
	}
}

// Load implements media.Element.
func (e *FakeElement) Load(src string) error {
	if e.closed {
		return media.ErrClosed
	}
	e.record("Load(%s)", src)
	e.mu.Lock()
	e.src = src
	e.current = 0
	e.duration = 0
	e.paused = true
	e.ended = false
	e.buffered = nil
	e.mu.Unlock()
	return nil
}

// Play implements media.Element.
func (e *FakeElement) Play() error {
	if e.closed {
		return media.ErrClosed
	}
	e.record("Play")
	if e.PlayErr != nil {
		return e.PlayErr
	}
	e.mu.Lock()
	wasPaused := e.paused
	e.paused = false
	e.ended = false
	e.mu.Unlock()
	if wasPaused {
		e.emit(media.EventPlay)
	}
	return nil
}

// Pause implements media.Element.
func (e *FakeElement) Pause() error {
	if e.closed {
		return media.ErrClosed
	}
	e.record("Pause")
	e.mu.Lock()
	wasPlaying := !e.paused
	e.paused = true
	e.mu.Unlock()
	if wasPlaying {
		e.emit(media.EventPause)
	}
	return nil
}

// SetCurrentTime implements media.Element. Like a browser element it clamps
// the target to the known duration.
func (e *FakeElement) SetCurrentTime(seconds float64) error {
	if e.closed {
		return media.ErrClosed
	}
	e.record("SetCurrentTime(%g)", seconds)
	e.mu.Lock()
	if seconds < 0 {
		seconds = 0
	}
	if e.duration > 0 && seconds > e.duration {
		seconds = e.duration
	}
	e.current = seconds
	e.mu.Unlock()
	e.emit(media.EventSeeked)
	e.emit(media.EventTimeUpdate)
	return nil
}

// SetVolume implements media.Element.
func (e *FakeElement) SetVolume(volume float64) error {
	if e.closed {
		return media.ErrClosed
	}
	e.record("SetVolume(%g)", math.Round(volume*100)/100)
	e.mu.Lock()
	e.volume = volume
	e.mu.Unlock()
	e.emit(media.EventVolumeChange)
	return nil
}

// SetMuted implements media.Element.
func (e *FakeElement) SetMuted(muted bool) error {
	if e.closed {
		return media.ErrClosed
	}
	e.record("SetMuted(%t)", muted)
	e.mu.Lock()
	e.muted = muted
	e.mu.Unlock()
	e.emit(media.EventVolumeChange)
	return nil
}

// SetPlaybackRate implements media.Element.
func (e *FakeElement) SetPlaybackRate(rate float64) error {
	if e.closed {
		return media.ErrClosed
	}
	e.record("SetPlaybackRate(%g)", rate)
	e.mu.Lock()
	e.rate = rate
	e.mu.Unlock()
	e.emit(media.EventRateChange)
	return nil
}

func (e *FakeElement) Src() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src
}

func (e *FakeElement) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

func (e *FakeElement) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

func (e *FakeElement) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

func (e *FakeElement) Ended() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ended
}

func (e *FakeElement) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

func (e *FakeElement) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

func (e *FakeElement) PlaybackRate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rate
}

func (e *FakeElement) Buffered() media.TimeRanges {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append(media.TimeRanges(nil), e.buffered...)
}

// SetEventHandler implements media.Element.
func (e *FakeElement) SetEventHandler(handler func(media.Event)) {
	e.mu.Lock()
	e.handler = handler
	e.mu.Unlock()
}

// Close implements media.Element.
func (e *FakeElement) Close() error {
	e.closed = true
	e.SetEventHandler(nil)
	return nil
}

// Closed reports whether Close was called.
func (e *FakeElement) Closed() bool { return e.closed }

// CurrentFrame implements media.FrameReader.
func (e *FakeElement) CurrentFrame() (image.Image, error) {
	if e.Frame == nil {
		return nil, fmt.Errorf("no frame")
	}
	return e.Frame, nil
}

// LoadMetadata simulates the source reporting its duration.
func (e *FakeElement) LoadMetadata(duration float64) {
	e.mu.Lock()
	e.duration = duration
	e.mu.Unlock()
	e.emit(media.EventLoadedMetadata)
}

// Tick simulates playback reaching t.
func (e *FakeElement) Tick(t float64) {
	e.mu.Lock()
	e.current = t
	e.mu.Unlock()
	e.emit(media.EventTimeUpdate)
}

// SetBuffered replaces the buffered ranges.
func (e *FakeElement) SetBuffered(ranges ...media.TimeRange) {
	e.mu.Lock()
	e.buffered = ranges
	e.mu.Unlock()
}

// Waiting simulates a stall.
func (e *FakeElement) Waiting() { e.emit(media.EventWaiting) }

// CanPlay simulates recovery from a stall.
func (e *FakeElement) CanPlay() { e.emit(media.EventCanPlay) }

// End simulates playback reaching the end of the media.
func (e *FakeElement) End() {
	e.mu.Lock()
	e.current = e.duration
	wasPlaying := !e.paused
	e.paused = true
	e.ended = true
	e.mu.Unlock()
	e.emit(media.EventTimeUpdate)
	if wasPlaying {
		e.emit(media.EventPause)
	}
	e.emit(media.EventEnded)
}

// Fail simulates a load error.
func (e *FakeElement) Fail(code, message string) {
	e.mu.Lock()
	h := e.handler
	e.mu.Unlock()
	if h != nil {
		h(media.Event{Type: media.EventError, Code: code, Message: message})
	}
}

// ResetCalls clears the recorded commands.
func (e *FakeElement) ResetCalls() { e.Calls = nil }

// FakeSampler is a media.FrameSampler that returns solid frames whose
// colour encodes the requested timestamp.
type FakeSampler struct {
	mu sync.Mutex
	// Requests records every sampled timestamp in call order.
	Requests []float64
	// Fail makes sampling fail for the listed timestamps.
	Fail map[float64]error
}

var _ media.FrameSampler = (*FakeSampler)(nil)

// SampleFrame implements media.FrameSampler.
func (s *FakeSampler) SampleFrame(ctx context.Context, src string, at float64) (image.Image, error) {
	s.mu.Lock()
	s.Requests = append(s.Requests, at)
	err := s.Fail[at]
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return SolidFrame(320, 180, color.RGBA{R: uint8(int(at) % 256), A: 255}), nil
}

// Sampled returns a copy of the recorded timestamps.
func (s *FakeSampler) Sampled() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.Requests...)
}

// SolidFrame returns a w x h image filled with c.
func SolidFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}
