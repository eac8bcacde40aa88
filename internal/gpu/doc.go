//go:build !nogpu

// Package gpu implements the letterbox blur accelerator on gogpu/wgpu.
//
// The blur is two full-screen render passes over a shared quad:
//
//	source (downsampled frame) -> horizontal pass -> intermediate
//	intermediate -> vertical pass -> output (display canvas size)
//
// Each pass averages the texels within the effective radius along its axis,
// capped at 25 texels either side. The vertical pass renders into the larger
// output target, so the upscale comes from the linear sampler. The output is
// copied into a row-aligned buffer and read back as an *image.RGBA.
//
// Shaders are WGSL, validated with naga before the pipelines are created.
// Software adapters run the same tap set on the CPU (see emulatedRenderer).
//
// The package is internal; it is registered with the letterbox package by
// importing github.com/philMorel/letterbox/gpu.
package gpu
