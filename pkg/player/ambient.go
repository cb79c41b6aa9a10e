package player

import (
	"image"
	"image/color"
	"time"

	"golang.org/x/image/draw"

	"github.com/go-drift/player/pkg/clock"
	"github.com/go-drift/player/pkg/media"
)

const (
	AmbientWidth    = 32
	AmbientHeight   = 18
	ambientInterval = 100 * time.Millisecond
)

// ambientRenderer downsamples the playing frame into a small canvas that
// the host blurs behind the video.
type ambientRenderer struct {
	canvas *image.RGBA
}

func newAmbientRenderer() *ambientRenderer {
	return &ambientRenderer{}
}

// draw scales frame into the canvas and returns its average colour.
func (a *ambientRenderer) draw(frame image.Image) color.RGBA {
	if a.canvas == nil {
		a.canvas = image.NewRGBA(image.Rect(0, 0, AmbientWidth, AmbientHeight))
	}
	draw.ApproxBiLinear.Scale(a.canvas, a.canvas.Bounds(), frame, frame.Bounds(), draw.Src, nil)
	return AverageColor(a.canvas)
}

// AverageColor returns the mean colour of img.
func AverageColor(img *image.RGBA) color.RGBA {
	var r, g, b, a, n uint64
	for i := 0; i+3 < len(img.Pix); i += 4 {
		r += uint64(img.Pix[i])
		g += uint64(img.Pix[i+1])
		b += uint64(img.Pix[i+2])
		a += uint64(img.Pix[i+3])
		n++
	}
	if n == 0 {
		return color.RGBA{}
	}
	return color.RGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n), A: uint8(a / n)}
}

// SetAmbient turns the ambient backdrop on or off. While on, the current
// frame is sampled every 100ms unless the element is paused or ended.
// Turning it off stops sampling and hides the backdrop; the canvas keeps
// its last frame.
func (p *Player) SetAmbient(on bool) {
	if p.disposed || on == p.state.AmbientEnabled {
		return
	}
	p.ambientTimer = clock.StopAll(p.ambientTimer)
	p.state.AmbientEnabled = on
	if !on {
		p.state.AmbientOpacity = 0
		p.notify()
		return
	}
	p.state.AmbientOpacity = 1
	// The backdrop outlives source changes, so it is guarded by disposal only.
	p.ambientTimer = clock.Every(p.clock, ambientInterval, func() {
		if p.disposed {
			return
		}
		p.drawAmbient()
	})
	p.notify()
}

// ToggleAmbient flips the ambient backdrop.
func (p *Player) ToggleAmbient() {
	p.SetAmbient(!p.state.AmbientEnabled)
}

// AmbientCanvas returns the backdrop canvas, or nil before the first frame.
func (p *Player) AmbientCanvas() *image.RGBA {
	return p.ambient.canvas
}

func (p *Player) drawAmbient() {
	if p.el.Paused() || p.el.Ended() {
		return
	}
	reader, ok := p.el.(media.FrameReader)
	if !ok {
		return
	}
	frame, err := reader.CurrentFrame()
	if err != nil || frame == nil {
		return
	}
	glow := p.ambient.draw(frame)
	p.state.Glow = glow
	p.notify()
}
