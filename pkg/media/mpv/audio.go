package mpv

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/go-drift/player/pkg/audio"
	"github.com/go-drift/player/pkg/media"
)

var errClosedContext = errors.New("mpv: audio context closed")

// filterLabel names the stable voice entry in mpv's audio filter list so
// it can be removed without touching filters the user configured.
const filterLabel = "@driftsv"

// FilterGraph renders chain as an mpv lavfi audio filter using ffmpeg's
// acompressor followed by a volume stage.
func FilterGraph(chain audio.Chain) string {
	c := chain.Compressor
	threshold := math.Pow(10, c.ThresholdDB/20)
	knee := clampf(math.Pow(10, c.KneeDB/20), 1, 8)
	ratio := clampf(c.Ratio, 1, 20)
	return fmt.Sprintf("lavfi=[acompressor=threshold=%.6g:knee=%g:ratio=%g:attack=%g:release=%g,volume=%g]",
		threshold, knee, ratio,
		float64(c.Attack.Microseconds())/1000,
		float64(c.Release.Microseconds())/1000,
		chain.MakeupGain)
}

func clampf(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// AudioContext is an audio.Context that inserts the chain into mpv's own
// filter list. mpv is always producing output, so it starts running.
type AudioContext struct {
	el *Element

	mu     sync.Mutex
	state  audio.State
	routed bool
}

var _ audio.Context = (*AudioContext)(nil)

// AudioFactory returns an audio.Factory bound to el.
func (e *Element) AudioFactory() audio.Factory {
	return func() (audio.Context, error) {
		e.mu.Lock()
		closed := e.closed
		e.mu.Unlock()
		if closed {
			return nil, fmt.Errorf("mpv: audio context: %w", media.ErrClosed)
		}
		return &AudioContext{el: e, state: audio.StateRunning}, nil
	}
}

func (a *AudioContext) State() audio.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Resume implements audio.Context.
func (a *AudioContext) Resume() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == audio.StateClosed {
		return errClosedContext
	}
	a.state = audio.StateRunning
	return nil
}

// Route implements audio.Context.
func (a *AudioContext) Route(chain audio.Chain) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == audio.StateClosed {
		return errClosedContext
	}
	if a.routed {
		if err := a.el.command("af", "remove", filterLabel); err != nil {
			return err
		}
		a.routed = false
	}
	if err := a.el.command("af", "add", filterLabel+":"+FilterGraph(chain)); err != nil {
		return err
	}
	a.routed = true
	return nil
}

// Disconnect implements audio.Context.
func (a *AudioContext) Disconnect() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.disconnect()
}

func (a *AudioContext) disconnect() error {
	if !a.routed {
		return nil
	}
	a.routed = false
	return a.el.command("af", "remove", filterLabel)
}

// Close implements audio.Context.
func (a *AudioContext) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == audio.StateClosed {
		return nil
	}
	err := a.disconnect()
	a.state = audio.StateClosed
	return err
}
