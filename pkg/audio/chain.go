package audio

import (
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
)

// Chain describes the processing inserted by stable voice.
type Chain struct {
	Compressor CompressorParams
	// MakeupGain is a linear multiplier applied after compression.
	MakeupGain float64
}

// StableVoice is the fixed chain: it tames loud effects and lifts quiet
// dialogue.
var StableVoiceChain = Chain{
	Compressor: CompressorParams{
		ThresholdDB: -24,
		KneeDB:      30,
		Ratio:       12,
		Attack:      3 * time.Millisecond,
		Release:     250 * time.Millisecond,
	},
	MakeupGain: 1.4,
}

// Build wraps src with the chain.
func (c Chain) Build(src beep.Streamer, sr beep.SampleRate) beep.Streamer {
	comp := NewCompressor(src, sr, c.Compressor)
	// effects.Gain multiplies by 1+Gain.
	return &effects.Gain{Streamer: comp, Gain: c.MakeupGain - 1}
}
