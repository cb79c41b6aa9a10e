// Package errors provides structured error reporting for the player.
//
// Nothing in the player returns feature failures to the host. They are
// wrapped in a [PlayerError], sent to the global [ErrorHandler] with
// [Report], and the failing feature degrades while playback continues.
package errors

import (
	"fmt"
	"time"
)

// Kind identifies the category of an error.
type Kind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown Kind = iota
	// KindMedia indicates a media element command or load failure.
	KindMedia
	// KindPreview indicates a scrub preview frame could not be produced.
	KindPreview
	// KindAudio indicates the audio post-processing graph failed.
	KindAudio
	// KindFullscreen indicates a fullscreen request was rejected.
	KindFullscreen
	// KindCast indicates casting to an external device failed.
	KindCast
	// KindBackend indicates a native backend (mpv, ffmpeg) failure.
	KindBackend
)

func (k Kind) String() string {
	switch k {
	case KindMedia:
		return "media"
	case KindPreview:
		return "preview"
	case KindAudio:
		return "audio"
	case KindFullscreen:
		return "fullscreen"
	case KindCast:
		return "cast"
	case KindBackend:
		return "backend"
	default:
		return "unknown"
	}
}

// PlayerError represents a structured error in the player.
type PlayerError struct {
	// Op is the operation that failed (e.g., "player.ToggleFullscreen").
	Op string
	// Kind categorizes the error.
	Kind Kind
	// Err is the underlying error.
	Err error
	// Source is the stream URL the error relates to, if any.
	Source string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *PlayerError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s [%s] source=%s: %v", e.Op, e.Kind, e.Source, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *PlayerError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "clock.Loop").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by the player.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *PlayerError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
