package letterbox

import "math"

const (
	// AspectEpsilon is the largest aspect-ratio difference still treated as
	// a match (no letterboxing).
	AspectEpsilon = 0.001

	// DownsampleFactor divides the native video size before the GPU blur.
	DownsampleFactor = 8

	// RadiusScale converts strength times downsample ratio into texels.
	RadiusScale = 2.5

	// GPUCanvasDivisor and FallbackCanvasDivisor divide the player size to
	// get the canvas size of each backend.
	GPUCanvasDivisor      = 2
	FallbackCanvasDivisor = 4
)

// AspectRatio returns w/h, or 0 when either side is not positive.
func AspectRatio(w, h int) float64 {
	if w <= 0 || h <= 0 {
		return 0
	}
	return float64(w) / float64(h)
}

// AspectMismatch reports whether a video with aspect ratio videoAR is
// letterboxed inside a player with aspect ratio playerAR.
func AspectMismatch(playerAR, videoAR float64) bool {
	return math.Abs(playerAR-videoAR) > AspectEpsilon
}

// DownsampleSize returns the GPU processing size for a native video size.
func DownsampleSize(videoW, videoH int) (w, h int) {
	return videoW / DownsampleFactor, videoH / DownsampleFactor
}

// CanvasSize returns the output canvas size for a player size and backend.
func CanvasSize(playerW, playerH int, backend RenderingBackend) (w, h int) {
	if backend == BackendGPU {
		return playerW / GPUCanvasDivisor, playerH / GPUCanvasDivisor
	}
	return playerW / FallbackCanvasDivisor, playerH / FallbackCanvasDivisor
}

// EffectiveRadius returns the per-pass box radius in downsampled texels:
// strength x (downsampled / display) x 2.5. The shader's +-25 tap bound
// clips larger values. A non-positive display size yields 0.
func EffectiveRadius(strength float64, downsampled, display int) float64 {
	if display <= 0 || downsampled <= 0 {
		return 0
	}
	return strength * (float64(downsampled) / float64(display)) * RadiusScale
}
