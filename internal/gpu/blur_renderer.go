//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"math"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/philMorel/letterbox"
)

// blurParamsSize is the byte size of the BlurParams uniform:
//
//	resolution  (vec2<f32>) = 8 bytes
//	blur_radius (f32)       = 4 bytes
//	flip_y      (f32)       = 4 bytes
const blurParamsSize = 16

// ErrRendererClosed is returned by Blur after Destroy.
var ErrRendererClosed = errors.New("gpu: blur renderer closed")

// blurParams returns the uniform bytes for one pass.
func blurParams(w, h uint32, radius float64, flipY bool) []byte {
	buf := make([]byte, blurParamsSize)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(float32(w)))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(float32(h)))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(float32(radius)))
	var flip float32
	if flipY {
		flip = 1
	}
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(flip))
	return buf
}

// BlurRenderer runs the two-pass separable box blur on a HAL device.
//
// Pass 1 samples the uploaded source along x into the intermediate target
// (downsampled size). Pass 2 samples the intermediate target along y into the
// output target (display canvas size); the upscale comes from the viewport
// mapping and the linear sampler. The output is read back into an
// *image.RGBA.
//
// GPU objects are created on first use and kept until Destroy. Size-dependent
// objects are recreated only when the source or output size changes.
type BlurRenderer struct {
	device hal.Device
	queue  hal.Queue

	programs         *ProgramPair
	quad             hal.Buffer
	sampler          hal.Sampler
	horizontalParams hal.Buffer
	verticalParams   hal.Buffer
	targets          *renderTargets

	upload []byte
	closed bool
}

// NewBlurRenderer creates a renderer for the given device and queue.
// Pipelines are not created until Init or the first Blur.
func NewBlurRenderer(device hal.Device, queue hal.Queue) *BlurRenderer {
	return &BlurRenderer{device: device, queue: queue}
}

// Init builds the programs, the quad, the sampler, and the uniform buffers.
// It is idempotent. A failure leaves the renderer empty.
func (r *BlurRenderer) Init() error {
	if r.closed {
		return ErrRendererClosed
	}
	if r.programs != nil {
		return nil
	}
	if err := r.createPipeline(); err != nil {
		r.destroyPipeline()
		return err
	}
	return nil
}

func (r *BlurRenderer) createPipeline() error {
	programs, err := NewProgramPair(r.device)
	if err != nil {
		return err
	}
	r.programs = programs

	if r.quad, err = UploadQuad(r.device, r.queue); err != nil {
		return err
	}

	r.sampler, err = r.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "blur_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
		LodMaxClamp:  32,
	})
	if err != nil {
		return fmt.Errorf("create blur sampler: %w", err)
	}

	for _, dst := range []*hal.Buffer{&r.horizontalParams, &r.verticalParams} {
		buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "blur_params",
			Size:  blurParamsSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create blur params buffer: %w", err)
		}
		*dst = buf
	}
	return nil
}

// Destroy releases every GPU object held by the renderer. Safe to call
// multiple times.
func (r *BlurRenderer) Destroy() {
	r.destroyPipeline()
	r.closed = true
}

func (r *BlurRenderer) destroyPipeline() {
	if r.device == nil {
		return
	}
	r.targets.destroy(r.device)
	r.targets = nil
	if r.verticalParams != nil {
		r.device.DestroyBuffer(r.verticalParams)
		r.verticalParams = nil
	}
	if r.horizontalParams != nil {
		r.device.DestroyBuffer(r.horizontalParams)
		r.horizontalParams = nil
	}
	if r.sampler != nil {
		r.device.DestroySampler(r.sampler)
		r.sampler = nil
	}
	if r.quad != nil {
		r.device.DestroyBuffer(r.quad)
		r.quad = nil
	}
	r.programs.Destroy(r.device)
	r.programs = nil
}

// ensureTargets recreates the size-dependent objects when sizes change.
func (r *BlurRenderer) ensureTargets(srcW, srcH, outW, outH uint32) error {
	if r.targets.matches(srcW, srcH, outW, outH) {
		return nil
	}
	r.targets.destroy(r.device)
	r.targets = nil
	rt, err := createRenderTargets(r.device, r.programs.bindLayout, r.sampler,
		r.horizontalParams, r.verticalParams, srcW, srcH, outW, outH)
	if err != nil {
		return err
	}
	slogger().Debug("blur targets resized",
		"src_w", srcW, "src_h", srcH, "out_w", outW, "out_h", outH)
	r.targets = rt
	return nil
}

// uploadSource writes src into the source texture with rows reversed.
func (r *BlurRenderer) uploadSource(src *image.RGBA, w, h uint32) error {
	rowBytes := int(w) * 4
	size := rowBytes * int(h)
	if cap(r.upload) < size {
		r.upload = make([]byte, size)
	}
	data := r.upload[:size]
	for y := 0; y < int(h); y++ {
		srcOff := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		dstOff := (int(h) - 1 - y) * rowBytes
		copy(data[dstOff:dstOff+rowBytes], src.Pix[srcOff:srcOff+rowBytes])
	}
	return r.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: r.targets.source.tex, Aspect: gputypes.TextureAspectAll},
		data,
		&hal.ImageDataLayout{BytesPerRow: uint32(rowBytes), RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
}

// Blur renders src through both passes into an outW x outH image.
func (r *BlurRenderer) Blur(src *image.RGBA, outW, outH int, strength float64) (*image.RGBA, error) {
	if r.closed {
		return nil, ErrRendererClosed
	}
	if src == nil || src.Rect.Dx() <= 0 || src.Rect.Dy() <= 0 || outW <= 0 || outH <= 0 {
		return nil, fmt.Errorf("%w: source %v, output %dx%d", letterbox.ErrInvalidSize, boundsOf(src), outW, outH)
	}
	if err := r.Init(); err != nil {
		return nil, err
	}

	srcW, srcH := uint32(src.Rect.Dx()), uint32(src.Rect.Dy()) //nolint:gosec // checked positive above
	w, h := uint32(outW), uint32(outH)                          //nolint:gosec // checked positive above
	if err := r.ensureTargets(srcW, srcH, w, h); err != nil {
		return nil, err
	}
	if err := r.uploadSource(src, srcW, srcH); err != nil {
		return nil, fmt.Errorf("upload source: %w", err)
	}

	radiusX := letterbox.EffectiveRadius(strength, src.Rect.Dx(), outW)
	radiusY := letterbox.EffectiveRadius(strength, src.Rect.Dy(), outH)
	if err := r.queue.WriteBuffer(r.horizontalParams, 0, blurParams(srcW, srcH, radiusX, true)); err != nil {
		return nil, fmt.Errorf("write horizontal params: %w", err)
	}
	if err := r.queue.WriteBuffer(r.verticalParams, 0, blurParams(srcW, srcH, radiusY, false)); err != nil {
		return nil, fmt.Errorf("write vertical params: %w", err)
	}

	if err := r.encodeAndSubmit(); err != nil {
		return nil, err
	}
	return r.readOutput()
}

// drawPass records one full-screen blur pass into encoder.
func (r *BlurRenderer) drawPass(encoder hal.CommandEncoder, label string, target hal.TextureView,
	program *Program, group hal.BindGroup, w, h uint32,
) {
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       target,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	rp.SetPipeline(program.pipeline)
	rp.SetBindGroup(0, group, nil)
	rp.SetVertexBuffer(0, r.quad, 0)
	rp.SetViewport(0, 0, float32(w), float32(h), 0, 1)
	rp.Draw(quadVertexCount, 1, 0, 0)
	rp.End()
}

func (r *BlurRenderer) encodeAndSubmit() error {
	rt := r.targets
	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "blur_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("blur"); err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("begin encoding: %w", err)
	}

	r.drawPass(encoder, "blur_horizontal_pass", rt.intermediate.view,
		r.programs.Horizontal, rt.horizontalGroup, rt.srcW, rt.srcH)
	r.drawPass(encoder, "blur_vertical_pass", rt.output.view,
		r.programs.Vertical, rt.verticalGroup, rt.outW, rt.outH)

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: rt.output.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(rt.output.tex, rt.readback, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: rt.readbackStride, RowsPerImage: rt.outH},
		TextureBase:  hal.ImageCopyTexture{Texture: rt.output.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: rt.outW, Height: rt.outH, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: rt.output.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	if _, err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := r.device.WaitIdle(); err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	return nil
}

// readOutput maps the readback buffer and strips the row padding.
func (r *BlurRenderer) readOutput() (*image.RGBA, error) {
	rt := r.targets
	size := uint64(rt.readbackStride) * uint64(rt.outH)
	mapping, err := r.device.MapBuffer(rt.readback, 0, size)
	if err != nil {
		return nil, fmt.Errorf("map readback: %w", err)
	}
	raw := unsafe.Slice((*byte)(mapping.Ptr), size)

	dst := image.NewRGBA(image.Rect(0, 0, int(rt.outW), int(rt.outH)))
	rowBytes := int(rt.outW) * 4
	for y := 0; y < int(rt.outH); y++ {
		srcOff := y * int(rt.readbackStride)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+rowBytes], raw[srcOff:srcOff+rowBytes])
	}
	if err := r.device.UnmapBuffer(rt.readback); err != nil {
		slogger().Warn("unmap readback failed", "err", err)
	}
	return dst, nil
}

func boundsOf(img *image.RGBA) image.Rectangle {
	if img == nil {
		return image.Rectangle{}
	}
	return img.Rect
}
