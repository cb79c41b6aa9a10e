package errors

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

var (
	defaultLoggerOnce sync.Once
	defaultLogger     zerolog.Logger
)

// NewLogger returns the logger used by [LogHandler] when none is set.
// Output is human-readable on a terminal and JSON otherwise.
func NewLogger(level zerolog.Level) zerolog.Logger {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
			Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

// LogHandler is an ErrorHandler that writes structured log records.
type LogHandler struct {
	// Logger receives the records. Nil uses a stderr logger at info level.
	Logger *zerolog.Logger
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

func (h *LogHandler) logger() *zerolog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	defaultLoggerOnce.Do(func() {
		defaultLogger = NewLogger(zerolog.InfoLevel)
	})
	return &defaultLogger
}

// HandleError logs a PlayerError. Preview failures are routine and are
// logged at debug level.
func (h *LogHandler) HandleError(err *PlayerError) {
	if err == nil {
		return
	}
	log := h.logger()
	ev := log.Warn()
	if err.Kind == KindPreview {
		ev = log.Debug()
	}
	ev = ev.Str("op", err.Op).Stringer("kind", err.Kind).Err(err.Err)
	if err.Source != "" {
		ev = ev.Str("source", err.Source)
	}
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("player error")
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	ev := h.logger().Error().Interface("value", err.Value)
	if err.Op != "" {
		ev = ev.Str("op", err.Op)
	}
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("player panic")
}
