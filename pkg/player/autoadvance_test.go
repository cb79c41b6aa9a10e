package player

import (
	"testing"
	"time"
)

func TestAutoAdvanceCountdownFiresOnce(t *testing.T) {
	nexts := 0
	h := newHarness(t, Props{StreamURL: "a.mp4", OnNext: func() { nexts++ }})
	h.playing(600, 560)

	if h.p.State().AutoAdvance.Armed {
		t.Fatal("40s before the end should not arm")
	}
	h.el.Tick(575)
	if aa := h.p.State().AutoAdvance; !aa.Armed || aa.Countdown != 5 {
		t.Fatalf("after crossing: got %+v, want armed at 5", aa)
	}

	for want := 4; want >= 1; want-- {
		h.clock.Advance(time.Second)
		if got := h.p.State().AutoAdvance.Countdown; got != want {
			t.Errorf("countdown: got %d, want %d", got, want)
		}
	}
	h.clock.Advance(time.Second)
	if nexts != 1 {
		t.Fatalf("OnNext: got %d calls, want 1", nexts)
	}
	if h.p.State().AutoAdvance.Armed {
		t.Error("auto-advance should reset after firing")
	}

	h.clock.Advance(10 * time.Second)
	h.el.Tick(590)
	h.clock.Advance(10 * time.Second)
	if nexts != 1 {
		t.Errorf("OnNext: got %d calls after firing, want 1", nexts)
	}
}

func TestAutoAdvanceCancel(t *testing.T) {
	nexts := 0
	h := newHarness(t, Props{StreamURL: "a.mp4", OnNext: func() { nexts++ }})
	h.playing(600, 580)

	h.clock.Advance(2 * time.Second)
	if got := h.p.State().AutoAdvance.Countdown; got != 3 {
		t.Fatalf("countdown: got %d, want 3", got)
	}
	h.p.CancelAutoAdvance()
	h.clock.Advance(10 * time.Second)

	if nexts != 0 {
		t.Errorf("OnNext: got %d calls after cancel, want 0", nexts)
	}
	h.el.Tick(590)
	if h.p.State().AutoAdvance.Armed {
		t.Error("ticks inside the tail should not re-arm after cancel")
	}

	h.el.End()
	if !h.p.State().AutoAdvance.Armed {
		t.Error("reaching the end should re-arm")
	}
}

func TestAutoAdvanceRearmsOnFreshCrossing(t *testing.T) {
	h := newHarness(t, Props{StreamURL: "a.mp4", OnNext: func() {}})
	h.playing(600, 580)
	h.p.CancelAutoAdvance()

	h.p.SeekAbsolute(0.5)
	h.el.Tick(575)
	if !h.p.State().AutoAdvance.Armed {
		t.Error("crossing into the tail again should re-arm")
	}
}

func TestPlayNextNow(t *testing.T) {
	nexts := 0
	h := newHarness(t, Props{StreamURL: "a.mp4", OnNext: func() { nexts++ }})
	h.playing(600, 580)

	h.p.PlayNextNow()
	h.clock.Advance(10 * time.Second)
	if nexts != 1 {
		t.Errorf("OnNext: got %d calls, want 1", nexts)
	}
}

func TestAutoAdvanceDisabled(t *testing.T) {
	tests := []struct {
		name  string
		props Props
	}{
		{"disabled", Props{StreamURL: "a.mp4", DisableAutoAdvance: true, OnNext: func() {}}},
		{"no next", Props{StreamURL: "a.mp4"}},
	}
	for _, tt := range tests {
		h := newHarness(t, tt.props)
		h.playing(600, 580)
		h.el.End()
		if h.p.State().AutoAdvance.Armed {
			t.Errorf("%s: auto-advance should not arm", tt.name)
		}
	}
}

func TestAutoAdvanceDisabledWhileArmed(t *testing.T) {
	nexts := 0
	props := Props{StreamURL: "a.mp4", OnNext: func() { nexts++ }}
	h := newHarness(t, props)
	h.playing(600, 580)

	props.DisableAutoAdvance = true
	h.p.SetProps(props)
	h.clock.Advance(10 * time.Second)

	if h.p.State().AutoAdvance.Armed || nexts != 0 {
		t.Errorf("disabling mid-countdown: armed %v nexts %d, want false 0", h.p.State().AutoAdvance.Armed, nexts)
	}
}
