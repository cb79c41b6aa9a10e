// Package audio implements the "stable voice" post-processing chain: a
// dynamic-range compressor followed by a fixed make-up gain, inserted
// between a media element's audio output and the output device.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep/v2"
)

// CompressorParams configures a Compressor. The fields follow the usual
// dynamics-compressor vocabulary: levels in dBFS, ratio as input:output.
type CompressorParams struct {
	ThresholdDB float64
	KneeDB      float64
	Ratio       float64
	Attack      time.Duration
	Release     time.Duration
}

// OutputLevel returns the static curve: the output level in dB for a
// steady input level in dB, with a quadratic soft knee centred on the
// threshold.
func (p CompressorParams) OutputLevel(inDB float64) float64 {
	over := inDB - p.ThresholdDB
	switch {
	case 2*over < -p.KneeDB:
		return inDB
	case p.KneeDB > 0 && 2*math.Abs(over) <= p.KneeDB:
		k := over + p.KneeDB/2
		return inDB + (1/p.Ratio-1)*k*k/(2*p.KneeDB)
	default:
		return p.ThresholdDB + over/p.Ratio
	}
}

// minLevelDB is the floor used when converting silence to decibels.
const minLevelDB = -120.0

// Compressor is a feed-forward, peak-sensing compressor implemented as a
// beep.Streamer. Gain changes are smoothed with separate attack and
// release time constants.
type Compressor struct {
	src    beep.Streamer
	params CompressorParams

	attackCoef  float64
	releaseCoef float64
	// gainDB is the smoothed gain reduction, always <= 0.
	gainDB float64
}

// NewCompressor wraps src.
func NewCompressor(src beep.Streamer, sr beep.SampleRate, p CompressorParams) *Compressor {
	return &Compressor{
		src:         src,
		params:      p,
		attackCoef:  smoothingCoef(p.Attack, sr),
		releaseCoef: smoothingCoef(p.Release, sr),
	}
}

func smoothingCoef(d time.Duration, sr beep.SampleRate) float64 {
	n := float64(sr.N(d))
	if n < 1 {
		return 0
	}
	return math.Exp(-1 / n)
}

// GainReductionDB returns the current smoothed gain reduction.
func (c *Compressor) GainReductionDB() float64 { return c.gainDB }

// Stream implements beep.Streamer.
func (c *Compressor) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = c.src.Stream(samples)
	for i := range samples[:n] {
		peak := math.Max(math.Abs(samples[i][0]), math.Abs(samples[i][1]))
		level := minLevelDB
		if peak > 0 {
			level = math.Max(20*math.Log10(peak), minLevelDB)
		}
		target := c.params.OutputLevel(level) - level

		coef := c.releaseCoef
		if target < c.gainDB {
			coef = c.attackCoef
		}
		c.gainDB = coef*c.gainDB + (1-coef)*target

		g := math.Pow(10, c.gainDB/20)
		samples[i][0] *= g
		samples[i][1] *= g
	}
	return n, ok
}

// Err implements beep.Streamer.
func (c *Compressor) Err() error { return c.src.Err() }
