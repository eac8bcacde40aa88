package letterbox

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Downsampler scales video frames onto one persistent surface. The surface
// is reallocated only when the requested size changes.
type Downsampler struct {
	surface *image.RGBA
	scaler  draw.Scaler
}

// NewDownsampler returns a downsampler using bilinear filtering.
func NewDownsampler() *Downsampler {
	return &Downsampler{scaler: draw.ApproxBiLinear}
}

// Downsample draws frame scaled to w x h and returns the shared surface.
// The returned image is overwritten by the next call.
func (d *Downsampler) Downsample(frame image.Image, w, h int) (*image.RGBA, error) {
	if frame == nil {
		return nil, ErrNoFrame
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("downsample to %dx%d: %w", w, h, ErrInvalidSize)
	}
	if d.surface == nil || d.surface.Rect.Dx() != w || d.surface.Rect.Dy() != h {
		d.surface = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	d.scaler.Scale(d.surface, d.surface.Rect, frame, frame.Bounds(), draw.Src, nil)
	return d.surface, nil
}

// Surface returns the current surface, or nil before the first call.
func (d *Downsampler) Surface() *image.RGBA {
	return d.surface
}
