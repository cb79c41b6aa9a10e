package player

import (
	"testing"
	"time"

	"github.com/go-drift/player/pkg/media"
)

func TestBufferHealthy(t *testing.T) {
	tests := []struct {
		name     string
		ranges   media.TimeRanges
		at       float64
		duration float64
		playing  bool
		want     bool
	}{
		{"paused with no data", nil, 100, 600, false, true},
		{"plenty ahead", media.TimeRanges{{Start: 0, End: 130}}, 100, 600, true, true},
		{"exactly two seconds", media.TimeRanges{{Start: 0, End: 102}}, 100, 600, true, true},
		{"under two seconds", media.TimeRanges{{Start: 0, End: 101.5}}, 100, 600, true, false},
		{"no covering range", media.TimeRanges{{Start: 0, End: 50}, {Start: 200, End: 300}}, 100, 600, true, false},
		{"tail buffered", media.TimeRanges{{Start: 590, End: 599.6}}, 599, 600, true, true},
		{"tail by position", nil, 599.7, 600, true, true},
		{"second range", media.TimeRanges{{Start: 0, End: 50}, {Start: 90, End: 101}}, 100, 600, true, false},
	}
	for _, tt := range tests {
		if got := BufferHealthy(tt.ranges, tt.at, tt.duration, tt.playing); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestBufferMonitor(t *testing.T) {
	h := newHarness(t, Props{StreamURL: "a.mp4"})
	h.el.SetBuffered(media.TimeRange{Start: 0, End: 101})
	h.playing(600, 100)

	h.clock.Advance(500 * time.Millisecond)
	s := h.p.State()
	if s.BufferHealthy {
		t.Error("1s of read-ahead while playing should be unhealthy")
	}
	if s.BufferedEnd != 101 {
		t.Errorf("buffered end: got %v, want 101", s.BufferedEnd)
	}

	h.el.SetBuffered(media.TimeRange{Start: 0, End: 200})
	h.clock.Advance(500 * time.Millisecond)
	if !h.p.State().BufferHealthy {
		t.Error("ample read-ahead should be healthy")
	}

	h.el.SetBuffered(media.TimeRange{Start: 0, End: 101})
	h.p.Pause()
	h.clock.Advance(500 * time.Millisecond)
	if !h.p.State().BufferHealthy {
		t.Error("paused playback is always healthy")
	}
	if h.el.CurrentTime() != 100 {
		t.Error("the monitor must not seek")
	}
}

func TestWaitingAndCanPlay(t *testing.T) {
	h := newHarness(t, Props{StreamURL: "a.mp4"})
	h.playing(600, 100)

	h.el.Waiting()
	if !h.p.State().Loading {
		t.Error("waiting should mark the player loading")
	}
	h.el.CanPlay()
	if h.p.State().Loading {
		t.Error("canplay should clear loading")
	}
}
