package letterbox

import (
	"fmt"
)

// RenderingBackend identifies how a controller produces its blurred
// background. It is chosen once per controller and never renegotiated.
type RenderingBackend int

const (
	// BackendFallback2D scales the frame to a quarter-size canvas and blurs
	// it on the CPU.
	BackendFallback2D RenderingBackend = iota

	// BackendGPU downsamples the frame and blurs it in two GPU passes.
	BackendGPU
)

// String returns the backend name.
func (b RenderingBackend) String() string {
	switch b {
	case BackendGPU:
		return "gpu"
	case BackendFallback2D:
		return "fallback2d"
	default:
		return fmt.Sprintf("RenderingBackend(%d)", int(b))
	}
}

// ProbeCapabilities initializes a and reports the backend it supports.
// A nil accelerator or any Init failure yields BackendFallback2D together
// with the reason. The accelerator is not closed here.
func ProbeCapabilities(a BlurAccelerator) (RenderingBackend, error) {
	if a == nil {
		return BackendFallback2D, ErrFallbackToCPU
	}
	propagateLogger(a, Logger())
	if err := a.Init(); err != nil {
		return BackendFallback2D, fmt.Errorf("init %s accelerator: %w", a.Name(), err)
	}
	return BackendGPU, nil
}
