package filter

import (
	"math"

	"github.com/philMorel/letterbox/internal/cache"
)

// GaussianKernel generates a 1D Gaussian kernel using radius as sigma.
// The kernel is normalized so all values sum to 1.0.
//
// The kernel size is 2 * ceil(radius * 3) + 1, which covers 99.7% of the
// distribution. For radius <= 0, returns the identity kernel [1.0].
func GaussianKernel(radius float64) []float32 {
	if radius <= 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return []float32{1.0}
	}

	sigma := radius
	halfSize := int(math.Ceil(sigma * 3))
	size := halfSize*2 + 1

	kernel := make([]float32, size)

	// G(x) = exp(-x²/(2σ²)); the constant factor cancels on normalization.
	twoSigmaSq := 2 * sigma * sigma
	sum := float64(0)

	for i := 0; i < size; i++ {
		x := float64(i - halfSize)
		val := math.Exp(-(x * x) / twoSigmaSq)
		kernel[i] = float32(val)
		sum += val
	}

	if sum > 0 {
		invSum := float32(1.0 / sum)
		for i := range kernel {
			kernel[i] *= invSum
		}
	}

	return kernel
}

// BoxKernel generates a 1D box (uniform) kernel for the given radius.
// All values are equal: 1/(2*radius+1).
func BoxKernel(radius int) []float32 {
	if radius <= 0 {
		return []float32{1.0}
	}

	size := radius*2 + 1
	kernel := make([]float32, size)
	val := float32(1.0) / float32(size)

	for i := range kernel {
		kernel[i] = val
	}

	return kernel
}

// kernelQuantum is the radius resolution of the kernel cache.
const kernelQuantum = 100

var kernels = cache.New[int, []float32](64)

// CachedGaussianKernel returns the Gaussian kernel for radius quantized to
// 1/100 pixel. The fallback renderer blurs every other frame with the same
// strength, so the kernel is built once per session.
func CachedGaussianKernel(radius float64) []float32 {
	if radius <= 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return []float32{1.0}
	}
	key := int(radius * kernelQuantum)
	return kernels.GetOrCreate(key, func() []float32 {
		return GaussianKernel(float64(key) / kernelQuantum)
	})
}

// KernelCacheStats reports the kernel cache counters.
func KernelCacheStats() cache.Stats {
	return kernels.Stats()
}
