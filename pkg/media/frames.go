package media

import (
	"context"
	"image"
)

// FrameReader is implemented by elements that can hand out the frame
// currently on screen.
type FrameReader interface {
	CurrentFrame() (image.Image, error)
}

// FrameSampler decodes a single frame of src at a timestamp using a
// detached, muted decoder that shares nothing with the playing element.
// Implementations must honor ctx cancellation.
type FrameSampler interface {
	SampleFrame(ctx context.Context, src string, at float64) (image.Image, error)
}

// FrameSamplerFunc adapts a function to FrameSampler.
type FrameSamplerFunc func(ctx context.Context, src string, at float64) (image.Image, error)

// SampleFrame calls f.
func (f FrameSamplerFunc) SampleFrame(ctx context.Context, src string, at float64) (image.Image, error) {
	return f(ctx, src, at)
}
