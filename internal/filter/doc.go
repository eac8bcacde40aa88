// Package filter provides the CPU blur filters used by the letterbox
// pipeline.
//
// This package contains:
//   - Gaussian blur (separable, O(n) per radius), used by the 2D fallback
//   - Single-axis box pass with the bounded tap set of the GPU shaders
//
// Gaussian kernels are cached by radius. A BlurFilter with a Pool runs both
// passes as row bands. All filters operate on *image.RGBA and clamp samples
// at the image edge.
package filter
