package mpv

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-drift/player/pkg/media"
)

// Observed property IDs.
const (
	propTimePos = iota + 1
	propDuration
	propPause
	propVolume
	propMute
	propSpeed
	propCacheState
	propPausedForCache
	propEOFReached
)

var observed = []struct {
	id   int
	name string
}{
	{propTimePos, "time-pos"},
	{propDuration, "duration"},
	{propPause, "pause"},
	{propVolume, "volume"},
	{propMute, "mute"},
	{propSpeed, "speed"},
	{propCacheState, "demuxer-cache-state"},
	{propPausedForCache, "paused-for-cache"},
	{propEOFReached, "eof-reached"},
}

// DefaultCommandTimeout bounds each IPC command.
const DefaultCommandTimeout = 5 * time.Second

// ElementOptions configures an Element.
type ElementOptions struct {
	// Dispatch delivers events to the player's loop. Defaults to calling
	// the handler on the connection's read goroutine.
	Dispatch func(func())
	// CommandTimeout defaults to DefaultCommandTimeout.
	CommandTimeout time.Duration
}

// Element is a media.Element backed by mpv. It also implements
// media.FrameReader by asking mpv for a screenshot of the current frame.
type Element struct {
	conn     *Conn
	dispatch func(func())
	timeout  time.Duration
	onClose  func() error

	frameOnce sync.Once
	frameDir  string
	frameErr  error

	mu       sync.Mutex
	src      string
	current  float64
	duration float64
	paused   bool
	ended    bool
	volume   float64
	muted    bool
	speed    float64
	buffered media.TimeRanges
	seeking  bool
	loaded   bool
	closed   bool
	handler  func(media.Event)

	// started is false from Load until mpv reports start-file, so values
	// still in flight for the previous file are dropped.
	started bool
}

var (
	_ media.Element     = (*Element)(nil)
	_ media.FrameReader = (*Element)(nil)
)

// NewElement wraps an IPC connection and starts observing the properties
// the player needs.
func NewElement(conn *Conn, opts ElementOptions) (*Element, error) {
	e := &Element{
		conn:     conn,
		dispatch: opts.Dispatch,
		timeout:  opts.CommandTimeout,
		paused:   true,
		volume:   1,
		speed:    1,
	}
	if e.dispatch == nil {
		e.dispatch = func(f func()) { f() }
	}
	if e.timeout <= 0 {
		e.timeout = DefaultCommandTimeout
	}
	conn.handleEvents(e.onMessage)
	for _, p := range observed {
		if err := e.command("observe_property", p.id, p.name); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Element) command(args ...any) error {
	_, err := e.request(args...)
	return err
}

func (e *Element) request(args ...any) (json.RawMessage, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return nil, media.ErrClosed
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	return e.conn.Command(ctx, args...)
}

// Load implements media.Element. Loading pauses the element first, as
// mpv keeps its pause state across files. An empty src stops playback.
func (e *Element) Load(src string) error {
	if err := e.command("set_property", "pause", true); err != nil {
		return err
	}
	e.mu.Lock()
	wasPaused := e.paused
	e.paused = true
	e.started = false
	e.src = src
	e.current = 0
	e.duration = 0
	e.ended = false
	e.buffered = nil
	e.loaded = false
	e.seeking = false
	e.mu.Unlock()
	if !wasPaused {
		e.emit(media.Event{Type: media.EventPause})
	}
	if src == "" {
		return e.command("stop")
	}
	return e.command("loadfile", src, "replace")
}

// Play implements media.Element. Playing an ended element restarts it.
func (e *Element) Play() error {
	if e.Ended() {
		if err := e.SetCurrentTime(0); err != nil {
			return err
		}
	}
	return e.command("set_property", "pause", false)
}

// Pause implements media.Element.
func (e *Element) Pause() error {
	return e.command("set_property", "pause", true)
}

// SetCurrentTime implements media.Element.
func (e *Element) SetCurrentTime(seconds float64) error {
	e.mu.Lock()
	e.seeking = true
	e.mu.Unlock()
	return e.command("seek", seconds, "absolute")
}

// SetVolume implements media.Element. mpv volumes run from 0 to 100.
func (e *Element) SetVolume(volume float64) error {
	return e.command("set_property", "volume", volume*100)
}

// SetMuted implements media.Element.
func (e *Element) SetMuted(muted bool) error {
	return e.command("set_property", "mute", muted)
}

// SetPlaybackRate implements media.Element.
func (e *Element) SetPlaybackRate(rate float64) error {
	return e.command("set_property", "speed", rate)
}

// SetFullscreen toggles mpv's window between fullscreen and windowed.
func (e *Element) SetFullscreen(on bool) error {
	return e.command("set_property", "fullscreen", on)
}

func (e *Element) Src() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src
}

func (e *Element) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

func (e *Element) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

func (e *Element) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

func (e *Element) Ended() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ended
}

func (e *Element) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

func (e *Element) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

func (e *Element) PlaybackRate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

func (e *Element) Buffered() media.TimeRanges {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append(media.TimeRanges(nil), e.buffered...)
}

// SetEventHandler implements media.Element.
func (e *Element) SetEventHandler(handler func(media.Event)) {
	e.mu.Lock()
	e.handler = handler
	e.mu.Unlock()
}

// Close implements media.Element. It also stops the mpv process when the
// element was created by Start.
func (e *Element) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.handler = nil
	e.mu.Unlock()

	var err error
	if e.onClose != nil {
		err = e.onClose()
	}
	if cerr := e.conn.Close(); err == nil {
		err = cerr
	}
	if e.frameDir != "" {
		os.RemoveAll(e.frameDir)
	}
	return err
}

// CurrentFrame implements media.FrameReader.
func (e *Element) CurrentFrame() (image.Image, error) {
	e.frameOnce.Do(func() {
		e.frameDir, e.frameErr = os.MkdirTemp("", "driftplay-frames-")
	})
	if e.frameErr != nil {
		return nil, e.frameErr
	}
	path := filepath.Join(e.frameDir, "frame.png")
	if err := e.command("screenshot-to-file", path, "video"); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

// onMessage runs on the connection's read goroutine.
func (e *Element) onMessage(m message) {
	var events []media.Event
	e.mu.Lock()
	switch m.Event {
	case "property-change":
		events = e.applyProperty(m)
	case "start-file":
		e.started = true
	case "playback-restart":
		if e.seeking {
			e.seeking = false
			events = append(events, media.Event{Type: media.EventSeeked}, media.Event{Type: media.EventTimeUpdate})
		}
	case "end-file":
		if m.Reason == "error" {
			msg := m.FileError
			if msg == "" {
				msg = "playback failed"
			}
			events = append(events, media.Event{Type: media.EventError, Code: media.ErrCodeSourceError, Message: msg})
		}
	}
	e.mu.Unlock()

	for _, ev := range events {
		e.emit(ev)
	}
}

// emit hands ev to the handler installed when it is dispatched.
func (e *Element) emit(ev media.Event) {
	e.dispatch(func() {
		e.mu.Lock()
		h := e.handler
		e.mu.Unlock()
		if h != nil {
			h(ev)
		}
	})
}

// applyProperty updates the cached state and returns the resulting
// events. Callers must hold mu.
func (e *Element) applyProperty(m message) []media.Event {
	if len(m.Data) == 0 || string(m.Data) == "null" {
		return nil
	}
	switch m.ID {
	case propTimePos, propDuration, propCacheState, propEOFReached:
		if !e.started {
			return nil
		}
	}
	ev := func(t media.EventType) []media.Event { return []media.Event{{Type: t}} }

	switch m.ID {
	case propTimePos:
		var v float64
		if json.Unmarshal(m.Data, &v) != nil {
			return nil
		}
		e.current = v
		return ev(media.EventTimeUpdate)
	case propDuration:
		var v float64
		if json.Unmarshal(m.Data, &v) != nil || v <= 0 {
			return nil
		}
		e.duration = v
		if !e.loaded {
			e.loaded = true
			return ev(media.EventLoadedMetadata)
		}
	case propPause:
		var v bool
		if json.Unmarshal(m.Data, &v) != nil || v == e.paused {
			return nil
		}
		e.paused = v
		if v {
			return ev(media.EventPause)
		}
		e.ended = false
		return ev(media.EventPlay)
	case propVolume:
		var v float64
		if json.Unmarshal(m.Data, &v) != nil || v/100 == e.volume {
			return nil
		}
		e.volume = v / 100
		return ev(media.EventVolumeChange)
	case propMute:
		var v bool
		if json.Unmarshal(m.Data, &v) != nil || v == e.muted {
			return nil
		}
		e.muted = v
		return ev(media.EventVolumeChange)
	case propSpeed:
		var v float64
		if json.Unmarshal(m.Data, &v) != nil || v == e.speed {
			return nil
		}
		e.speed = v
		return ev(media.EventRateChange)
	case propCacheState:
		var v cacheState
		if json.Unmarshal(m.Data, &v) != nil {
			return nil
		}
		e.buffered = v.ranges()
	case propPausedForCache:
		var v bool
		if json.Unmarshal(m.Data, &v) != nil {
			return nil
		}
		if v {
			return ev(media.EventWaiting)
		}
		return ev(media.EventCanPlay)
	case propEOFReached:
		var v bool
		if json.Unmarshal(m.Data, &v) != nil || !v || e.ended {
			return nil
		}
		e.ended = true
		return ev(media.EventEnded)
	}
	return nil
}

// cacheState is the subset of demuxer-cache-state the element uses.
type cacheState struct {
	SeekableRanges []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"seekable-ranges"`
}

func (c cacheState) ranges() media.TimeRanges {
	if len(c.SeekableRanges) == 0 {
		return nil
	}
	out := make(media.TimeRanges, 0, len(c.SeekableRanges))
	for _, r := range c.SeekableRanges {
		out = append(out, media.TimeRange{Start: r.Start, End: r.End})
	}
	return out
}

func (e *Element) String() string {
	return fmt.Sprintf("mpv.Element(%s)", e.Src())
}
