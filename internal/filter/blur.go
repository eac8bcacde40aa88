package filter

import (
	"image"
	"sync"

	"github.com/philMorel/letterbox/internal/parallel"
)

// BlurFilter applies separable Gaussian blur to an image.
// The separable algorithm processes horizontal and vertical passes
// independently, achieving O(w*h*(rx+ry)) complexity instead of O(w*h*rx*ry).
type BlurFilter struct {
	// RadiusX is the horizontal standard deviation in pixels.
	RadiusX float64

	// RadiusY is the vertical standard deviation in pixels.
	RadiusY float64

	// Pool, if set, runs each pass as row bands in parallel.
	Pool *parallel.WorkerPool
}

// NewBlurFilter creates a new blur filter with equal radius in both directions.
func NewBlurFilter(radius float64) *BlurFilter {
	return &BlurFilter{
		RadiusX: radius,
		RadiusY: radius,
	}
}

// Apply blurs src into dst. dst must have the same size as src; both may
// have any origin. src and dst must not share pixels.
//
//  1. Horizontal pass: convolve each row of src into a float buffer
//  2. Vertical pass: convolve each column of the buffer into dst
func (f *BlurFilter) Apply(dst, src *image.RGBA) {
	if src == nil || dst == nil {
		return
	}
	width, height := src.Rect.Dx(), src.Rect.Dy()
	if width <= 0 || height <= 0 || dst.Rect.Dx() != width || dst.Rect.Dy() != height {
		return
	}

	temp := getTempBuffer(width, height)
	defer putTempBuffer(temp)

	kx := CachedGaussianKernel(f.RadiusX)
	ky := CachedGaussianKernel(f.RadiusY)

	if f.Pool == nil {
		blurHorizontal(src, temp, width, 0, height, kx)
		blurVertical(temp, dst, width, height, 0, height, ky)
		return
	}
	// The vertical pass reads rows of temp outside its own band, so the
	// horizontal pass must finish first.
	f.Pool.ForBands(height, func(y0, y1 int) {
		blurHorizontal(src, temp, width, y0, y1, kx)
	})
	f.Pool.ForBands(height, func(y0, y1 int) {
		blurVertical(temp, dst, width, height, y0, y1, ky)
	})
}

// blurHorizontal convolves rows [y0, y1) of src into temp.
func blurHorizontal(src *image.RGBA, temp []float32, width, y0, y1 int, kernel []float32) {
	half := len(kernel) / 2

	for y := y0; y < y1; y++ {
		row := src.Pix[src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y):]

		for x := 0; x < width; x++ {
			var r, g, b, a float32

			for k, weight := range kernel {
				kx := clampInt(x+k-half, 0, width-1)
				i := kx * 4
				r += float32(row[i+0]) * weight
				g += float32(row[i+1]) * weight
				b += float32(row[i+2]) * weight
				a += float32(row[i+3]) * weight
			}

			t := (y*width + x) * 4
			temp[t+0] = r
			temp[t+1] = g
			temp[t+2] = b
			temp[t+3] = a
		}
	}
}

// blurVertical convolves temp into rows [y0, y1) of dst. It reads every row
// of temp within the kernel's reach.
func blurVertical(temp []float32, dst *image.RGBA, width, height, y0, y1 int, kernel []float32) {
	half := len(kernel) / 2

	for y := y0; y < y1; y++ {
		row := dst.Pix[dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+y):]

		for x := 0; x < width; x++ {
			var r, g, b, a float32

			for k, weight := range kernel {
				ky := clampInt(y+k-half, 0, height-1)
				t := (ky*width + x) * 4
				r += temp[t+0] * weight
				g += temp[t+1] * weight
				b += temp[t+2] * weight
				a += temp[t+3] * weight
			}

			i := x * 4
			row[i+0] = clampUint8(r)
			row[i+1] = clampUint8(g)
			row[i+2] = clampUint8(b)
			row[i+3] = clampUint8(a)
		}
	}
}

// floatBuffer wraps a slice for sync.Pool to avoid allocation warnings.
type floatBuffer struct {
	data []float32
}

// Temporary buffer pool for blur operations. Fallback canvases are a quarter
// of the player size, so 512x512 covers the common case.
var tempBufferPool = sync.Pool{
	New: func() interface{} {
		return &floatBuffer{data: make([]float32, 512*512*4)}
	},
}

// getTempBuffer retrieves a temporary buffer from the pool.
// The buffer is guaranteed to have at least width*height*4 elements.
func getTempBuffer(width, height int) []float32 {
	size := width * height * 4
	wrapper := tempBufferPool.Get().(*floatBuffer)

	if len(wrapper.data) < size {
		tempBufferPool.Put(wrapper)
		return make([]float32, size)
	}
	return wrapper.data[:size]
}

// putTempBuffer returns a temporary buffer to the pool.
func putTempBuffer(buf []float32) {
	if cap(buf) <= 16*1024*1024 {
		tempBufferPool.Put(&floatBuffer{data: buf[:cap(buf)]})
	}
}

// clampInt clamps an integer to [minVal, maxVal].
func clampInt(v, minVal, maxVal int) int {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

func clampUint8(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5) // Round to nearest
}
