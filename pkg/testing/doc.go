// Package testing provides deterministic doubles for testing code built on
// the player: a [FakeClock] whose timers fire only when the test advances
// time, a scriptable [FakeElement] that emits media events synchronously,
// and a [FakeSampler] for scrub preview frames.
//
// # Quick Start
//
//	clk := drifttest.NewFakeClock()
//	el := drifttest.NewFakeElement()
//	p := player.New(el, player.Options{Clock: clk})
//	p.SetProps(player.Props{StreamURL: "https://cdn.example/ep1.mp4"})
//
//	el.LoadMetadata(1440)
//	p.Play()
//	clk.Advance(1500 * time.Millisecond)
//
//	if p.State().ControlsVisible {
//	    t.Error("controls should auto-hide while playing")
//	}
//
// Everything runs on the test goroutine: pass [Synchronous] as the player's
// dispatch and spawn functions so background work completes inline.
package testing

// Synchronous runs f immediately. Use it as a dispatch or spawn function.
func Synchronous(f func()) { f() }
