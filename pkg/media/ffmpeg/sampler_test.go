package ffmpeg

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestArgs(t *testing.T) {
	s := &Sampler{}
	got := strings.Join(s.Args("https://cdn.example/ep1.mp4", 12.5), " ")
	want := "-hide_banner -loglevel error -ss 12.500 -i https://cdn.example/ep1.mp4 -an -sn -frames:v 1 -f image2pipe -vcodec png -"
	if got != want {
		t.Errorf("Args:\n got %s\nwant %s", got, want)
	}
}

func TestArgsScaled(t *testing.T) {
	s := &Sampler{Width: 160}
	got := strings.Join(s.Args("a.mp4", 0), " ")
	if !strings.Contains(got, "-vf scale=160:-2 -f image2pipe") {
		t.Errorf("Args: %q should scale before the output format", got)
	}
}

func TestSampleFrameMissingBinary(t *testing.T) {
	s := &Sampler{Path: "/nonexistent/ffmpeg"}
	if _, err := s.SampleFrame(context.Background(), "a.mp4", 1); err == nil {
		t.Error("SampleFrame: expected an error for a missing binary")
	}
}

func TestSampleFrameCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &Sampler{Path: "/nonexistent/ffmpeg"}
	_, err := s.SampleFrame(ctx, "a.mp4", 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("SampleFrame: got %v, want context.Canceled", err)
	}
}
