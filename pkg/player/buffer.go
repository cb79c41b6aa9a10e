package player

import (
	"time"

	"github.com/go-drift/player/pkg/clock"
	"github.com/go-drift/player/pkg/media"
)

const (
	bufferSampleInterval = 500 * time.Millisecond
	// lowBufferSeconds is the smallest healthy read-ahead.
	lowBufferSeconds = 2.0
	// tailSlack treats a range ending this close to the end as complete.
	tailSlack = 0.5
)

// BufferHealthy reports whether playback at t has enough data ahead.
// Paused playback and a fully buffered tail are always healthy. When no
// range covers t the read-ahead is zero.
func BufferHealthy(ranges media.TimeRanges, t, duration float64, playing bool) bool {
	if !playing {
		return true
	}
	end := t
	if r, ok := ranges.Containing(t); ok {
		end = r.End
	}
	if end >= duration-tailSlack {
		return true
	}
	return end-t >= lowBufferSeconds
}

func (p *Player) startBufferMonitor() {
	p.bufferTimer = clock.StopAll(p.bufferTimer)
	p.bufferTimer = p.every(bufferSampleInterval, p.sampleBuffer)
}

// sampleBuffer is advisory: it never pauses or seeks.
func (p *Player) sampleBuffer() {
	ranges := p.el.Buffered()
	healthy := BufferHealthy(ranges, p.el.CurrentTime(), p.state.Duration, p.state.Playing)
	end := ranges.End()
	if healthy == p.state.BufferHealthy && end == p.state.BufferedEnd {
		return
	}
	p.state.BufferHealthy = healthy
	p.state.BufferedEnd = end
	p.notify()
}
