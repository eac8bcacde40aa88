package filter

import (
	"image"
	"math"
)

// MaxTapOffset bounds the box pass to offsets -25..25 (51 taps), matching
// the loop bound of the blur shaders.
const MaxTapOffset = 25

// Axis selects the direction of a single box pass.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

// BoxRadius returns the integer half-width of the tap set for radius: the
// offsets o with |o| <= radius, clipped to MaxTapOffset.
func BoxRadius(radius float64) int {
	if radius <= 0 || math.IsNaN(radius) {
		return 0
	}
	if radius >= MaxTapOffset {
		return MaxTapOffset
	}
	return int(math.Floor(radius))
}

// BoxPass blurs src into dst along one axis with an unweighted mean of the
// taps selected by BoxRadius. Samples outside the image clamp to the edge.
// dst must have the same size as src and must not share pixels with it.
func BoxPass(dst, src *image.RGBA, radius float64, axis Axis) {
	if src == nil || dst == nil {
		return
	}
	width, height := src.Rect.Dx(), src.Rect.Dy()
	if width <= 0 || height <= 0 || dst.Rect.Dx() != width || dst.Rect.Dy() != height {
		return
	}
	kernel := BoxKernel(BoxRadius(radius))
	half := len(kernel) / 2

	for y := 0; y < height; y++ {
		out := dst.Pix[dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+y):]
		for x := 0; x < width; x++ {
			var r, g, b, a float32
			for k, weight := range kernel {
				sx, sy := x, y
				if axis == Horizontal {
					sx = clampInt(x+k-half, 0, width-1)
				} else {
					sy = clampInt(y+k-half, 0, height-1)
				}
				i := src.PixOffset(src.Rect.Min.X+sx, src.Rect.Min.Y+sy)
				r += float32(src.Pix[i+0]) * weight
				g += float32(src.Pix[i+1]) * weight
				b += float32(src.Pix[i+2]) * weight
				a += float32(src.Pix[i+3]) * weight
			}
			i := x * 4
			out[i+0] = clampUint8(r)
			out[i+1] = clampUint8(g)
			out[i+2] = clampUint8(b)
			out[i+3] = clampUint8(a)
		}
	}
}
