package clock

import (
	"context"

	"github.com/go-drift/player/pkg/errors"
)

// Loop runs posted callbacks one at a time on a single goroutine.
//
// Create with [NewLoop], start with [Loop.Run], and hand [Loop.Post] to the
// player and its backends as their dispatch function.
type Loop struct {
	queue chan func()
	done  chan struct{}
}

// NewLoop creates a loop with a queue of the given capacity.
func NewLoop(capacity int) *Loop {
	if capacity <= 0 {
		capacity = 256
	}
	return &Loop{
		queue: make(chan func(), capacity),
		done:  make(chan struct{}),
	}
}

// Post enqueues f. It blocks while the queue is full and reports false if
// the loop has stopped.
func (l *Loop) Post(f func()) bool {
	if f == nil {
		return false
	}
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- f:
		return true
	case <-l.done:
		return false
	}
}

// Dispatch is Post without the result, for use as a dispatch function.
func (l *Loop) Dispatch(f func()) {
	l.Post(f)
}

// Run executes callbacks until ctx is cancelled. A panicking callback is
// reported and the loop keeps running.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-l.queue:
			l.run(f)
		}
	}
}

func (l *Loop) run(f func()) {
	defer errors.Recover("clock.Loop")
	f()
}
