package audio

import (
	"fmt"
	"sync"

	"github.com/gopxl/beep/v2"
)

// State is the lifecycle state of a Context.
type State int

const (
	// StateSuspended means the context exists but is not producing output,
	// typically until a user gesture resumes it.
	StateSuspended State = iota
	// StateRunning means processed audio is reaching the device.
	StateRunning
	// StateClosed means the context released its resources.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateSuspended:
		return "suspended"
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Context owns the audio routing of one media element. Constructing a
// context takes the element's output over. Route inserts a chain between
// the element and the device, and Disconnect restores the direct path.
type Context interface {
	State() State
	Resume() error
	Route(chain Chain) error
	Disconnect() error
	Close() error
}

// Factory constructs a Context for the player's element.
type Factory func() (Context, error)

// Router passes a decoded stream to the output device and lets a Context
// swap processing in and out without interrupting playback.
type Router struct {
	mu     sync.Mutex
	src    beep.Streamer
	active beep.Streamer
}

// NewRouter returns a Router that initially passes src through untouched.
func NewRouter(src beep.Streamer) *Router {
	return &Router{src: src}
}

// Stream implements beep.Streamer.
func (r *Router) Stream(samples [][2]float64) (int, bool) {
	r.mu.Lock()
	s := r.active
	if s == nil {
		s = r.src
	}
	r.mu.Unlock()
	return s.Stream(samples)
}

// Err implements beep.Streamer.
func (r *Router) Err() error { return r.src.Err() }

// Insert routes the source through build(source).
func (r *Router) Insert(build func(src beep.Streamer) beep.Streamer) {
	processed := build(r.src)
	r.mu.Lock()
	r.active = processed
	r.mu.Unlock()
}

// Bypass restores the direct path.
func (r *Router) Bypass() {
	r.mu.Lock()
	r.active = nil
	r.mu.Unlock()
}

// Processing reports whether a chain is inserted.
func (r *Router) Processing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// BeepContext is an in-process Context for elements whose audio is
// decoded into a beep.Streamer and played through a Router.
type BeepContext struct {
	mu         sync.Mutex
	router     *Router
	sampleRate beep.SampleRate
	state      State
	resume     func() error
}

// NewBeepContext binds a context to router. It starts suspended when
// resume is non-nil and running otherwise; resume is called by Resume to
// unblock the output device.
func NewBeepContext(router *Router, sr beep.SampleRate, resume func() error) *BeepContext {
	state := StateRunning
	if resume != nil {
		state = StateSuspended
	}
	return &BeepContext{router: router, sampleRate: sr, state: state, resume: resume}
}

func (c *BeepContext) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *BeepContext) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateClosed:
		return fmt.Errorf("audio: resume on closed context")
	case StateRunning:
		return nil
	}
	if c.resume != nil {
		if err := c.resume(); err != nil {
			return fmt.Errorf("audio: resume: %w", err)
		}
	}
	c.state = StateRunning
	return nil
}

func (c *BeepContext) Route(chain Chain) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return fmt.Errorf("audio: route on closed context")
	}
	c.router.Insert(func(src beep.Streamer) beep.Streamer {
		return chain.Build(src, c.sampleRate)
	})
	return nil
}

func (c *BeepContext) Disconnect() error {
	c.router.Bypass()
	return nil
}

func (c *BeepContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return nil
	}
	c.router.Bypass()
	c.state = StateClosed
	return nil
}
