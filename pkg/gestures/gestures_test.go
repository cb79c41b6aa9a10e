package gestures_test

import (
	"testing"
	"time"

	"github.com/go-drift/player/pkg/gestures"
	drifttest "github.com/go-drift/player/pkg/testing"
)

func TestHoldRecognizer_Tap(t *testing.T) {
	clk := drifttest.NewFakeClock()
	held := false
	r := &gestures.HoldRecognizer{Clock: clk, OnHold: func() { held = true }}

	if !r.Down() {
		t.Fatal("Down should start a press")
	}
	clk.Advance(200 * time.Millisecond)
	if got := r.Up(); got != gestures.HoldTap {
		t.Errorf("Up() = %v, want HoldTap", got)
	}
	clk.Advance(time.Second)
	if held {
		t.Error("OnHold fired after release")
	}
	if r.State() != gestures.HoldIdle {
		t.Errorf("State() = %v, want idle", r.State())
	}
}

func TestHoldRecognizer_Hold(t *testing.T) {
	clk := drifttest.NewFakeClock()
	holds := 0
	r := &gestures.HoldRecognizer{Clock: clk, OnHold: func() { holds++ }}

	r.Down()
	clk.Advance(499 * time.Millisecond)
	if holds != 0 {
		t.Fatal("OnHold fired before threshold")
	}
	clk.Advance(time.Millisecond)
	if holds != 1 {
		t.Fatalf("holds = %d, want 1", holds)
	}
	if r.State() != gestures.HoldOverridden {
		t.Errorf("State() = %v, want overridden", r.State())
	}
	if got := r.Up(); got != gestures.HoldReleased {
		t.Errorf("Up() = %v, want HoldReleased", got)
	}
}

func TestHoldRecognizer_RepeatIgnored(t *testing.T) {
	clk := drifttest.NewFakeClock()
	r := &gestures.HoldRecognizer{Clock: clk}

	r.Down()
	clk.Advance(300 * time.Millisecond)
	if r.Down() {
		t.Error("repeated Down should be ignored")
	}
	clk.Advance(200 * time.Millisecond)
	if r.State() != gestures.HoldOverridden {
		t.Errorf("repeat must not restart the timer; State() = %v", r.State())
	}
}

func TestHoldRecognizer_UpWithoutDown(t *testing.T) {
	r := &gestures.HoldRecognizer{Clock: drifttest.NewFakeClock()}
	if got := r.Up(); got != gestures.HoldNone {
		t.Errorf("Up() = %v, want HoldNone", got)
	}
}

func TestHoldRecognizer_Cancel(t *testing.T) {
	clk := drifttest.NewFakeClock()
	held := false
	r := &gestures.HoldRecognizer{Clock: clk, OnHold: func() { held = true }}
	r.Down()
	r.Cancel()
	clk.Advance(time.Second)
	if held || clk.Pending() != 0 {
		t.Error("Cancel should clear the hold timer")
	}
}

func TestDoubleTap_SameSide(t *testing.T) {
	clk := drifttest.NewFakeClock()
	var singles, doubles []gestures.Side
	r := &gestures.DoubleTapRecognizer{
		Clock:       clk,
		OnSingleTap: func(s gestures.Side) { singles = append(singles, s) },
		OnDoubleTap: func(s gestures.Side) { doubles = append(doubles, s) },
	}

	r.Tap(gestures.SideLeft)
	clk.Advance(250 * time.Millisecond)
	r.Tap(gestures.SideLeft)
	clk.Advance(time.Second)

	if len(doubles) != 1 || doubles[0] != gestures.SideLeft {
		t.Errorf("doubles = %v, want [left]", doubles)
	}
	if len(singles) != 0 {
		t.Errorf("singles = %v, want none", singles)
	}
}

func TestDoubleTap_SingleAfterWindow(t *testing.T) {
	clk := drifttest.NewFakeClock()
	var singles []gestures.Side
	r := &gestures.DoubleTapRecognizer{
		Clock:       clk,
		OnSingleTap: func(s gestures.Side) { singles = append(singles, s) },
		OnDoubleTap: func(gestures.Side) { t.Error("unexpected double tap") },
	}

	r.Tap(gestures.SideRight)
	clk.Advance(299 * time.Millisecond)
	if len(singles) != 0 {
		t.Fatal("single tap reported before the window closed")
	}
	clk.Advance(time.Millisecond)
	if len(singles) != 1 || singles[0] != gestures.SideRight {
		t.Errorf("singles = %v, want [right]", singles)
	}
}

func TestDoubleTap_OppositeSides(t *testing.T) {
	clk := drifttest.NewFakeClock()
	var singles []gestures.Side
	r := &gestures.DoubleTapRecognizer{
		Clock:       clk,
		OnSingleTap: func(s gestures.Side) { singles = append(singles, s) },
		OnDoubleTap: func(gestures.Side) { t.Error("taps on different sides must not combine") },
	}

	r.Tap(gestures.SideLeft)
	clk.Advance(100 * time.Millisecond)
	r.Tap(gestures.SideRight)
	clk.Advance(time.Second)

	if len(singles) != 1 || singles[0] != gestures.SideRight {
		t.Errorf("singles = %v, want [right]", singles)
	}
}

func TestSideOf(t *testing.T) {
	tests := []struct {
		x, width float64
		want     gestures.Side
	}{
		{0, 100, gestures.SideLeft},
		{49.9, 100, gestures.SideLeft},
		{50, 100, gestures.SideRight},
		{100, 100, gestures.SideRight},
	}
	for _, tt := range tests {
		if got := gestures.SideOf(tt.x, tt.width); got != tt.want {
			t.Errorf("SideOf(%v, %v) = %v, want %v", tt.x, tt.width, got, tt.want)
		}
	}
}
