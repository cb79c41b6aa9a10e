package player

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"time"

	"golang.org/x/image/draw"

	"github.com/go-drift/player/pkg/errors"
)

const (
	PreviewWidth  = 160
	PreviewHeight = 90

	previewJPEGQuality = 70

	// previewStagger spreads decode start times: target t starts after t*50ms.
	previewStagger = 50 * time.Millisecond

	// minPreviewStep and previewDivisions give step = max(10, floor(d/20)).
	minPreviewStep   = 10
	previewDivisions = 20

	defaultPreviewConcurrency = 2
	defaultPreviewTimeout     = 10 * time.Second
)

// PreviewTargets returns the timestamps sampled for a media of the given
// duration: 0, step, 2*step, ... up to the duration.
func PreviewTargets(duration float64) []float64 {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return nil
	}
	step := math.Max(minPreviewStep, math.Floor(duration/previewDivisions))
	var targets []float64
	for t := 0.0; t <= duration; t += step {
		targets = append(targets, t)
	}
	return targets
}

// PreviewCache holds JPEG thumbnails keyed by whole seconds.
type PreviewCache struct {
	frames map[int][]byte
}

// NewPreviewCache returns an empty cache.
func NewPreviewCache() *PreviewCache {
	return &PreviewCache{frames: make(map[int][]byte)}
}

func (c *PreviewCache) Put(second int, jpeg []byte) { c.frames[second] = jpeg }

func (c *PreviewCache) Has(second int) bool {
	_, ok := c.frames[second]
	return ok
}

func (c *PreviewCache) Len() int { return len(c.frames) }

func (c *PreviewCache) Clear() { clear(c.frames) }

// Nearest returns the thumbnail whose key is closest to t. Ties go to the
// earlier key.
func (c *PreviewCache) Nearest(t float64) (second int, jpeg []byte, ok bool) {
	best := math.Inf(1)
	for k, v := range c.frames {
		d := math.Abs(float64(k) - t)
		if d < best || (d == best && k < second) {
			best, second, jpeg, ok = d, k, v, true
		}
	}
	return second, jpeg, ok
}

// PreviewAt returns the thumbnail nearest to t, or false while none is
// available and a placeholder should be shown.
func (p *Player) PreviewAt(t float64) ([]byte, bool) {
	_, jpeg, ok := p.previews.Nearest(t)
	return jpeg, ok
}

// Previews exposes the cache of the current source.
func (p *Player) Previews() *PreviewCache { return p.previews }

// schedulePreviews starts the staggered sampling for the current source,
// once per source.
func (p *Player) schedulePreviews() {
	if p.previewsScheduled || p.opts.Sampler == nil || p.state.Duration <= 0 {
		return
	}
	p.previewsScheduled = true
	for _, t := range PreviewTargets(p.state.Duration) {
		delay := time.Duration(t * float64(previewStagger))
		p.previewTimers = append(p.previewTimers, p.after(delay, func() {
			p.generatePreview(t)
		}))
	}
}

// generatePreview decodes one thumbnail in the background. Failures are
// reported and the target is skipped.
func (p *Player) generatePreview(t float64) {
	key := int(math.Round(t))
	if p.previews.Has(key) {
		return
	}
	src := p.props.StreamURL
	epoch := p.epoch
	ctx, cancel := context.WithTimeout(p.previewCtx, p.opts.PreviewTimeout)
	p.spawn(func() {
		defer cancel()
		data, err := p.renderPreview(ctx, src, t)
		p.dispatch(func() {
			if p.disposed || epoch != p.epoch {
				return
			}
			if err != nil {
				errors.Report(&errors.PlayerError{
					Op:     "player.preview",
					Kind:   errors.KindPreview,
					Source: src,
					Err:    fmt.Errorf("frame at %gs: %w", t, err),
				})
				return
			}
			p.previews.Put(key, data)
		})
	})
}

// renderPreview runs off the loop and touches no player state besides
// the immutable options and the semaphore.
func (p *Player) renderPreview(ctx context.Context, src string, t float64) ([]byte, error) {
	if err := p.previewSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.previewSem.Release(1)

	frame, err := p.opts.Sampler.SampleFrame(ctx, src, t)
	if err != nil {
		return nil, err
	}
	return EncodeThumbnail(frame)
}

// EncodeThumbnail scales img into the preview canvas and encodes it as JPEG.
func EncodeThumbnail(img image.Image) ([]byte, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, PreviewWidth, PreviewHeight))
	draw.ApproxBiLinear.Scale(canvas, canvas.Bounds(), img, img.Bounds(), draw.Src, nil)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: previewJPEGQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
