package cmd

import (
	"image/color"
	"strings"
	"testing"

	"github.com/go-drift/player/pkg/player"
)

func TestParsePlayArgs(t *testing.T) {
	opts, err := parsePlayArgs([]string{"-config", "show.yaml", "-episode", "3", "a.mp4", "b.mp4"})
	if err != nil {
		t.Fatalf("parsePlayArgs: %v", err)
	}
	if opts.configPath != "show.yaml" || opts.episode != 3 {
		t.Errorf("opts: got %+v", opts)
	}
	if len(opts.urls) != 2 || opts.urls[1] != "b.mp4" {
		t.Errorf("urls: got %v", opts.urls)
	}

	opts, _ = parsePlayArgs([]string{"--config=x.yaml"})
	if opts.configPath != "x.yaml" || opts.episode != 1 {
		t.Errorf("defaults: got %+v", opts)
	}

	for _, bad := range [][]string{{"-config"}, {"-episode", "0"}, {"-episode", "x"}} {
		if _, err := parsePlayArgs(bad); err == nil {
			t.Errorf("parsePlayArgs(%q): expected an error", bad)
		}
	}
}

func TestStepRate(t *testing.T) {
	tests := []struct {
		rate float64
		step int
		want float64
	}{
		{1, 1, 1.25},
		{1, -1, 0.75},
		{2, 1, 2},
		{0.5, -1, 0.5},
	}
	for _, tt := range tests {
		if got := stepRate(tt.rate, tt.step); got != tt.want {
			t.Errorf("stepRate(%v, %d): got %v, want %v", tt.rate, tt.step, got, tt.want)
		}
	}
}

func TestNextSelection(t *testing.T) {
	props := player.Props{
		QualityOptions: []player.QualityOption{
			{Label: "1080p", Servers: []player.ServerOption{{Name: "A"}, {Name: "B"}}},
			{Label: "720p"},
		},
		ActiveQuality: "720p",
		ActiveServer:  "B",
	}
	if got := nextQuality(props); got != "1080p" {
		t.Errorf("nextQuality: got %q, want 1080p", got)
	}
	if got := nextServer(props, props.QualityOptions[0].Servers); got != "A" {
		t.Errorf("nextServer: got %q, want A", got)
	}
}

func TestStatusLine(t *testing.T) {
	st := player.State{
		Playing:       true,
		Volume:        0.8,
		Rate:          1.5,
		CurrentTime:   75,
		Duration:      1420,
		BufferHealthy: true,
		ShowSkipIntro: true,
	}
	got := statusLine("Episode 1", "1080p", st)
	want := "> Episode 1  1:15 / 23:40  [1080p, 1.5x, vol 80%]  i: skip intro"
	if got != want {
		t.Errorf("statusLine:\n got %q\nwant %q", got, want)
	}

	st.AmbientEnabled = true
	st.Glow = color.RGBA{R: 10, G: 20, B: 30, A: 255}
	st.AutoAdvance = player.AutoAdvance{Armed: true, Countdown: 3}
	got = statusLine("Episode 1", "", st)
	if !strings.HasPrefix(got, "\x1b[48;2;10;20;30m") {
		t.Errorf("statusLine should start with the glow swatch: %q", got)
	}
	if !strings.Contains(got, "Next episode in 3") {
		t.Errorf("statusLine should show the countdown: %q", got)
	}

	if got := statusLine("Ep", "", player.State{NoStream: true}); got != "Ep  No stream available" {
		t.Errorf("no stream: got %q", got)
	}
}
