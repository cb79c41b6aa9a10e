// Package mpv drives an mpv process as a [media.Element] over mpv's JSON
// IPC socket.
//
// Commands are sent as request/response pairs on the socket; property
// changes observed with observe_property arrive as events and are mapped
// to media events, which are handed to the dispatch function the element
// was created with.
package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// ErrConnClosed is returned for requests on a closed connection.
var ErrConnClosed = errors.New("mpv: connection closed")

// CommandError is an error reported by mpv for a command.
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("mpv: %s: %s", e.Command, e.Message)
}

// message is any line mpv writes: a reply carries a request ID, an event
// carries an event name.
type message struct {
	RequestID int64           `json:"request_id"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`

	Event  string `json:"event"`
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
	// FileError is set on end-file events with reason "error".
	FileError string `json:"file_error"`
}

type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// Conn is a JSON IPC connection. It is safe for concurrent use.
type Conn struct {
	rwc io.ReadWriteCloser

	writeMu sync.Mutex
	nextID  atomic.Int64

	mu      sync.Mutex
	pending map[int64]chan message
	closed  bool
	onEvent func(message)

	done chan struct{}
}

// Dial connects to the IPC socket at path, retrying until ctx is done so
// a freshly started mpv has time to create it.
func Dial(ctx context.Context, path string) (*Conn, error) {
	var d net.Dialer
	for {
		c, err := d.DialContext(ctx, "unix", path)
		if err == nil {
			return NewConn(c), nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("mpv: dial %s: %w", path, err)
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// NewConn starts reading replies and events from rwc.
func NewConn(rwc io.ReadWriteCloser) *Conn {
	c := &Conn{
		rwc:     rwc,
		pending: make(map[int64]chan message),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// handleEvents installs the event callback. It runs on the read goroutine.
func (c *Conn) handleEvents(fn func(message)) {
	c.mu.Lock()
	c.onEvent = fn
	c.mu.Unlock()
}

func (c *Conn) readLoop() {
	defer close(c.done)
	scanner := bufio.NewScanner(c.rwc)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var m message
		if err := json.Unmarshal(scanner.Bytes(), &m); err != nil {
			continue
		}
		if m.Event != "" {
			c.mu.Lock()
			fn := c.onEvent
			c.mu.Unlock()
			if fn != nil {
				fn(m)
			}
			continue
		}
		c.mu.Lock()
		ch, ok := c.pending[m.RequestID]
		delete(c.pending, m.RequestID)
		c.mu.Unlock()
		if ok {
			ch <- m
		}
	}
	c.shutdown()
}

func (c *Conn) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

// Command sends a command and waits for its reply.
func (c *Conn) Command(ctx context.Context, args ...any) (json.RawMessage, error) {
	id := c.nextID.Add(1)
	ch := make(chan message, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrConnClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()

	line, err := json.Marshal(request{Command: args, RequestID: id})
	if err != nil {
		c.forget(id)
		return nil, fmt.Errorf("mpv: encode command: %w", err)
	}
	c.writeMu.Lock()
	_, err = c.rwc.Write(append(line, '\n'))
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return nil, fmt.Errorf("mpv: write: %w", err)
	}

	select {
	case m, ok := <-ch:
		if !ok {
			return nil, ErrConnClosed
		}
		if m.Error != "" && m.Error != "success" {
			return nil, &CommandError{Command: fmt.Sprint(args[0]), Message: m.Error}
		}
		return m.Data, nil
	case <-ctx.Done():
		c.forget(id)
		return nil, ctx.Err()
	}
}

func (c *Conn) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Close closes the connection and waits for the reader to stop.
func (c *Conn) Close() error {
	err := c.rwc.Close()
	<-c.done
	return err
}
