// Package media defines the native media element the player drives.
//
// An [Element] is the Go counterpart of a browser video element: commands
// request a change, and the authoritative state is read back when the
// element reports an [Event]. Backends (see the mpv subpackage) deliver
// events through the dispatch function they were created with, so handlers
// always run on the player's loop.
package media

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by commands issued after [Element.Close].
var ErrClosed = errors.New("media: element closed")

// EventType identifies a media element event.
type EventType int

const (
	// EventTimeUpdate fires periodically while the playback position moves.
	EventTimeUpdate EventType = iota
	// EventLoadedMetadata fires once the duration of a new source is known.
	EventLoadedMetadata
	// EventWaiting fires when playback stalls for lack of data.
	EventWaiting
	// EventCanPlay fires when enough data is available to (re)start.
	EventCanPlay
	// EventPlay fires when playback is requested to start.
	EventPlay
	// EventPause fires when playback pauses.
	EventPause
	// EventEnded fires when playback reaches the end of the media.
	EventEnded
	// EventRateChange fires when the playback rate changes.
	EventRateChange
	// EventVolumeChange fires when volume or mute changes.
	EventVolumeChange
	// EventSeeked fires when a seek completes.
	EventSeeked
	// EventError fires when the source fails to load or decode.
	EventError
)

// String returns a human-readable label for the event type.
func (t EventType) String() string {
	switch t {
	case EventTimeUpdate:
		return "timeupdate"
	case EventLoadedMetadata:
		return "loadedmetadata"
	case EventWaiting:
		return "waiting"
	case EventCanPlay:
		return "canplay"
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventEnded:
		return "ended"
	case EventRateChange:
		return "ratechange"
	case EventVolumeChange:
		return "volumechange"
	case EventSeeked:
		return "seeked"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event is a notification from an Element.
type Event struct {
	Type EventType
	// Code is one of the ErrCode constants for EventError.
	Code string
	// Message describes an EventError.
	Message string
}

// Element is a media element exclusively owned by one player.
//
// Commands return an error only when the request could not be issued;
// the resulting state change is observed through events.
type Element interface {
	// Load replaces the current source and leaves the element paused, so
	// playback of the new source starts with Play. An empty src unloads
	// the element.
	Load(src string) error
	Play() error
	Pause() error
	// SetCurrentTime requests a seek to the given position in seconds.
	SetCurrentTime(seconds float64) error
	// SetVolume requests a volume in [0, 1].
	SetVolume(volume float64) error
	SetMuted(muted bool) error
	SetPlaybackRate(rate float64) error

	Src() string
	CurrentTime() float64
	// Duration returns the media duration in seconds, or 0 if unknown.
	Duration() float64
	Paused() bool
	Ended() bool
	Volume() float64
	Muted() bool
	PlaybackRate() float64
	Buffered() TimeRanges

	// SetEventHandler installs the handler that receives element events.
	// Passing nil removes it.
	SetEventHandler(handler func(Event))
	// Close releases native resources. Close is idempotent.
	Close() error
}
