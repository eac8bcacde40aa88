package letterbox

import (
	"fmt"
	"image"

	"github.com/philMorel/letterbox/internal/filter"
	"github.com/philMorel/letterbox/internal/parallel"
	"golang.org/x/image/draw"
)

// Renderer turns a live video frame into an encoded, blurred canvas of
// outW x outH pixels.
type Renderer interface {
	Render(frame image.Image, outW, outH int, strength float64) (EncodedImage, error)
}

// GPURenderer downsamples the frame by DownsampleFactor and blurs it on a
// BlurAccelerator.
type GPURenderer struct {
	accel BlurAccelerator
	down  *Downsampler
}

// NewGPURenderer returns a renderer driving an initialized accelerator.
func NewGPURenderer(accel BlurAccelerator) *GPURenderer {
	return &GPURenderer{accel: accel, down: NewDownsampler()}
}

// Render implements Renderer.
func (r *GPURenderer) Render(frame image.Image, outW, outH int, strength float64) (EncodedImage, error) {
	if frame == nil {
		return EncodedImage{}, ErrNoFrame
	}
	b := frame.Bounds()
	w, h := DownsampleSize(b.Dx(), b.Dy())
	src, err := r.down.Downsample(frame, w, h)
	if err != nil {
		return EncodedImage{}, err
	}
	out, err := r.accel.Blur(src, outW, outH, strength)
	if err != nil {
		return EncodedImage{}, fmt.Errorf("%s blur: %w", r.accel.Name(), err)
	}
	return EncodeJPEG(out, GPUJPEGQuality)
}

// FallbackRenderer draws the frame straight into an output-sized surface
// and applies a Gaussian blur with sigma equal to strength pixels. The blur
// passes run as row bands on a worker pool.
type FallbackRenderer struct {
	surface *image.RGBA
	blurred *image.RGBA
	pool    *parallel.WorkerPool
}

// NewFallbackRenderer returns the CPU renderer. Close releases its workers.
func NewFallbackRenderer() *FallbackRenderer {
	return &FallbackRenderer{pool: parallel.NewWorkerPool(0)}
}

// Close stops the blur workers. Rendering after Close still works on the
// calling goroutine.
func (r *FallbackRenderer) Close() {
	r.pool.Close()
}

// Render implements Renderer.
func (r *FallbackRenderer) Render(frame image.Image, outW, outH int, strength float64) (EncodedImage, error) {
	if frame == nil {
		return EncodedImage{}, ErrNoFrame
	}
	if outW <= 0 || outH <= 0 {
		return EncodedImage{}, fmt.Errorf("fallback canvas %dx%d: %w", outW, outH, ErrInvalidSize)
	}
	rect := image.Rect(0, 0, outW, outH)
	if r.surface == nil || r.surface.Rect != rect {
		r.surface = image.NewRGBA(rect)
		r.blurred = image.NewRGBA(rect)
	}
	draw.ApproxBiLinear.Scale(r.surface, rect, frame, frame.Bounds(), draw.Src, nil)
	blur := filter.NewBlurFilter(strength)
	blur.Pool = r.pool
	blur.Apply(r.blurred, r.surface)
	return EncodeJPEG(r.blurred, FallbackJPEGQuality)
}
