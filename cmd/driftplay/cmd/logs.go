package cmd

import (
	"bytes"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/go-drift/player/pkg/errors"
)

// heldLogs collects log output while stderr shares the raw-mode terminal
// with the status line.
type heldLogs struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (h *heldLogs) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf.Write(p)
}

// holdLogs sends player errors to a buffer. The returned function
// restores stderr logging and copies the held records to w.
func holdLogs(w io.Writer) func() {
	held := &heldLogs{}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: held, NoColor: true, TimeFormat: "15:04:05"}).
		Level(logLevel()).With().Timestamp().Logger()
	errors.SetHandler(&errors.LogHandler{Logger: &logger, Verbose: verbose})
	return func() {
		configureLogging()
		held.mu.Lock()
		defer held.mu.Unlock()
		held.buf.WriteTo(w)
	}
}
