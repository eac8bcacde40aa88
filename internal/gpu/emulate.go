//go:build !nogpu

package gpu

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/philMorel/letterbox"
	"github.com/philMorel/letterbox/internal/filter"
)

// emulatedRenderer runs the two blur passes on the CPU with the exact tap
// set of the shaders. It backs software adapters, which cannot execute
// shader code.
type emulatedRenderer struct {
	intermediate *image.RGBA
	vertical     *image.RGBA
	closed       bool
}

func (e *emulatedRenderer) Blur(src *image.RGBA, outW, outH int, strength float64) (*image.RGBA, error) {
	if e.closed {
		return nil, ErrRendererClosed
	}
	if src == nil || src.Rect.Dx() <= 0 || src.Rect.Dy() <= 0 || outW <= 0 || outH <= 0 {
		return nil, fmt.Errorf("%w: source %v, output %dx%d", letterbox.ErrInvalidSize, boundsOf(src), outW, outH)
	}
	bounds := image.Rect(0, 0, src.Rect.Dx(), src.Rect.Dy())
	e.intermediate = reuseRGBA(e.intermediate, bounds)
	e.vertical = reuseRGBA(e.vertical, bounds)

	radiusX := letterbox.EffectiveRadius(strength, src.Rect.Dx(), outW)
	radiusY := letterbox.EffectiveRadius(strength, src.Rect.Dy(), outH)
	filter.BoxPass(e.intermediate, src, radiusX, filter.Horizontal)
	filter.BoxPass(e.vertical, e.intermediate, radiusY, filter.Vertical)

	dst := image.NewRGBA(image.Rect(0, 0, outW, outH))
	draw.BiLinear.Scale(dst, dst.Bounds(), e.vertical, e.vertical.Bounds(), draw.Src, nil)
	return dst, nil
}

func (e *emulatedRenderer) Destroy() {
	e.intermediate = nil
	e.vertical = nil
	e.closed = true
}

func reuseRGBA(img *image.RGBA, r image.Rectangle) *image.RGBA {
	if img != nil && img.Rect == r {
		return img
	}
	return image.NewRGBA(r)
}
