//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// targetFormat is the pixel format of every blur texture.
const targetFormat = gputypes.TextureFormatRGBA8Unorm

// copyPitchAlignment is the required BytesPerRow alignment for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// texture pairs a texture with its default view.
type texture struct {
	tex  hal.Texture
	view hal.TextureView
}

func createTexture(device hal.Device, label string, w, h uint32, usage gputypes.TextureUsage) (texture, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        targetFormat,
		Usage:         usage,
	})
	if err != nil {
		return texture{}, fmt.Errorf("create %s texture: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        targetFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return texture{}, fmt.Errorf("create %s view: %w", label, err)
	}
	return texture{tex: tex, view: view}, nil
}

func (t *texture) destroy(device hal.Device) {
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// renderTargets holds every size-dependent GPU object of the blur renderer.
// source and intermediate match the downsampled frame; output matches the
// display canvas.
type renderTargets struct {
	srcW, srcH uint32
	outW, outH uint32

	source       texture
	intermediate texture
	output       texture

	readback       hal.Buffer
	readbackStride uint32

	horizontalGroup hal.BindGroup
	verticalGroup   hal.BindGroup
}

// matches reports whether the targets already have the requested sizes.
func (rt *renderTargets) matches(srcW, srcH, outW, outH uint32) bool {
	return rt != nil && rt.srcW == srcW && rt.srcH == srcH && rt.outW == outW && rt.outH == outH
}

// alignedRowBytes returns the padded row pitch for a w-wide RGBA8 readback.
func alignedRowBytes(w uint32) uint32 {
	return (w*4 + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// createRenderTargets allocates textures, the readback buffer, and the two
// per-pass bind groups. On failure everything allocated is released.
func createRenderTargets(
	device hal.Device, layout hal.BindGroupLayout, sampler hal.Sampler,
	horizontalParams, verticalParams hal.Buffer,
	srcW, srcH, outW, outH uint32,
) (*renderTargets, error) {
	rt := &renderTargets{srcW: srcW, srcH: srcH, outW: outW, outH: outH}
	var err error

	if rt.source, err = createTexture(device, "blur_source", srcW, srcH,
		gputypes.TextureUsageCopyDst|gputypes.TextureUsageTextureBinding); err != nil {
		return nil, err
	}
	if rt.intermediate, err = createTexture(device, "blur_intermediate", srcW, srcH,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageTextureBinding); err != nil {
		rt.destroy(device)
		return nil, err
	}
	if rt.output, err = createTexture(device, "blur_output", outW, outH,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc); err != nil {
		rt.destroy(device)
		return nil, err
	}

	rt.readbackStride = alignedRowBytes(outW)
	rt.readback, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: "blur_readback",
		Size:  uint64(rt.readbackStride) * uint64(outH),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		rt.destroy(device)
		return nil, fmt.Errorf("create readback buffer: %w", err)
	}

	if rt.horizontalGroup, err = createPassBindGroup(device, "blur_horizontal_group", layout,
		rt.source.view, sampler, horizontalParams); err != nil {
		rt.destroy(device)
		return nil, err
	}
	if rt.verticalGroup, err = createPassBindGroup(device, "blur_vertical_group", layout,
		rt.intermediate.view, sampler, verticalParams); err != nil {
		rt.destroy(device)
		return nil, err
	}
	return rt, nil
}

func createPassBindGroup(
	device hal.Device, label string, layout hal.BindGroupLayout,
	view hal.TextureView, sampler hal.Sampler, params hal.Buffer,
) (hal.BindGroup, error) {
	group, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label,
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: bindingTexture, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: bindingSampler, Resource: gputypes.SamplerBinding{Sampler: sampler.NativeHandle()}},
			{Binding: bindingParams, Resource: gputypes.BufferBinding{Buffer: params.NativeHandle(), Size: blurParamsSize}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	return group, nil
}

// destroy releases all objects in reverse order of creation.
func (rt *renderTargets) destroy(device hal.Device) {
	if rt == nil {
		return
	}
	if rt.verticalGroup != nil {
		device.DestroyBindGroup(rt.verticalGroup)
		rt.verticalGroup = nil
	}
	if rt.horizontalGroup != nil {
		device.DestroyBindGroup(rt.horizontalGroup)
		rt.horizontalGroup = nil
	}
	if rt.readback != nil {
		device.DestroyBuffer(rt.readback)
		rt.readback = nil
	}
	rt.output.destroy(device)
	rt.intermediate.destroy(device)
	rt.source.destroy(device)
}
