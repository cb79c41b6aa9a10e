package audio

import (
	"fmt"

	"github.com/go-drift/player/pkg/errors"
)

// StableVoice owns the optional processing graph. The graph is built on
// the first Enable, released completely on Disable, and rebuilt from
// scratch on the next Enable. Failures are reported and swallowed so
// playback continues with unprocessed audio.
//
// StableVoice is not safe for concurrent use; call it from the player's loop.
type StableVoice struct {
	// Factory constructs the context. Nil means the environment has no
	// audio processing support.
	Factory Factory
	// Chain defaults to StableVoiceChain.
	Chain *Chain

	ctx     Context
	enabled bool
}

// Enabled reports the requested state.
func (s *StableVoice) Enabled() bool { return s.enabled }

// Active reports whether a graph is currently constructed and routed.
func (s *StableVoice) Active() bool { return s.ctx != nil }

func (s *StableVoice) chain() Chain {
	if s.Chain != nil {
		return *s.Chain
	}
	return StableVoiceChain
}

// Enable builds the graph if needed and resumes a suspended context.
func (s *StableVoice) Enable() {
	s.enabled = true
	if s.ctx == nil {
		if s.Factory == nil {
			report("audio.StableVoice.Enable", fmt.Errorf("audio processing unsupported"))
			return
		}
		ctx, err := s.Factory()
		if err != nil {
			report("audio.StableVoice.Enable", err)
			return
		}
		if err := ctx.Route(s.chain()); err != nil {
			report("audio.StableVoice.Enable", err)
			_ = ctx.Close()
			return
		}
		s.ctx = ctx
	}
	if s.ctx.State() == StateSuspended {
		if err := s.ctx.Resume(); err != nil {
			report("audio.StableVoice.Resume", err)
		}
	}
}

// Disable disconnects and releases the graph.
func (s *StableVoice) Disable() {
	s.enabled = false
	s.release()
}

// Release frees the graph without changing the requested state. Call it
// on teardown.
func (s *StableVoice) Release() {
	s.release()
}

func (s *StableVoice) release() {
	if s.ctx == nil {
		return
	}
	if err := s.ctx.Disconnect(); err != nil {
		report("audio.StableVoice.Disconnect", err)
	}
	if err := s.ctx.Close(); err != nil {
		report("audio.StableVoice.Close", err)
	}
	s.ctx = nil
}

func report(op string, err error) {
	errors.Report(&errors.PlayerError{Op: op, Kind: errors.KindAudio, Err: err})
}
