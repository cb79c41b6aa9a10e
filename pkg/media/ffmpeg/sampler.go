// Package ffmpeg samples single frames from a media source by running
// ffmpeg as a detached, muted decoder.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"strings"

	"github.com/go-drift/player/pkg/media"
)

// Sampler implements media.FrameSampler with ffmpeg.
type Sampler struct {
	// Path is the ffmpeg binary. Defaults to "ffmpeg" on PATH.
	Path string
	// Width scales the decoded frame inside ffmpeg when positive, keeping
	// the aspect ratio. Zero returns frames at source size.
	Width int
}

var _ media.FrameSampler = (*Sampler)(nil)

// Args returns the ffmpeg arguments for one frame of src at the given
// second. Seeking before -i makes ffmpeg jump to the nearest keyframe
// instead of decoding from the start.
func (s *Sampler) Args(src string, at float64) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-ss", strconv.FormatFloat(at, 'f', 3, 64),
		"-i", src,
		"-an", "-sn",
		"-frames:v", "1",
	}
	if s.Width > 0 {
		args = append(args, "-vf", "scale="+strconv.Itoa(s.Width)+":-2")
	}
	return append(args, "-f", "image2pipe", "-vcodec", "png", "-")
}

// SampleFrame implements media.FrameSampler. The process is killed when
// ctx is done.
func (s *Sampler) SampleFrame(ctx context.Context, src string, at float64) (image.Image, error) {
	path := s.Path
	if path == "" {
		path = "ffmpeg"
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, s.Args(src, at)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffmpeg: frame at %.3fs: %w: %s", at, err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg: no frame at %.3fs", at)
	}
	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg: decode frame: %w", err)
	}
	return img, nil
}
