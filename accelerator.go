package letterbox

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"
)

// ErrFallbackToCPU indicates the accelerator cannot serve the request.
// A controller that sees it at probe time uses the 2D fallback for good.
var ErrFallbackToCPU = errors.New("letterbox: falling back to 2D rendering")

// BlurAccelerator runs the two-pass separable box blur on a GPU.
//
// Implementations are provided by GPU backend packages (e.g., letterbox/gpu).
// Users opt in via blank import:
//
//	import _ "github.com/philMorel/letterbox/gpu"
//
// Every controller gets its own accelerator instance from the registered
// factory, initializes it once, and closes it on teardown.
type BlurAccelerator interface {
	// Name returns the accelerator name (e.g., "wgpu").
	Name() string

	// Init acquires the device and builds both blur programs. It is called
	// exactly once per instance; any error means the GPU path is unavailable.
	Init() error

	// Close releases every GPU object held by the accelerator.
	Close()

	// Blur runs the horizontal pass on src (the downsampled frame) and the
	// vertical pass into an outW x outH canvas, using the effective radius
	// derived from strength on each axis.
	Blur(src *image.RGBA, outW, outH int, strength float64) (*image.RGBA, error)
}

// acceleratorPriority lists accelerator names in order of preference.
var acceleratorPriority = []string{"wgpu"}

var accelerators = gpucontext.NewRegistry[BlurAccelerator](
	gpucontext.WithPriority(acceleratorPriority...),
)

// RegisterAccelerator registers a factory under name. The factory is called
// once per attached controller and must return a fresh, uninitialized
// accelerator. Registering the same name again replaces the factory.
//
// Typical usage via blank import in GPU backend packages:
//
//	func init() {
//	    letterbox.RegisterAccelerator("wgpu", func() letterbox.BlurAccelerator {
//	        return gpuimpl.NewAccelerator(nil)
//	    })
//	}
func RegisterAccelerator(name string, factory func() BlurAccelerator) error {
	if name == "" {
		return errors.New("letterbox: accelerator name must not be empty")
	}
	if factory == nil {
		return fmt.Errorf("letterbox: accelerator %q: factory must not be nil", name)
	}
	accelerators.Register(name, factory)
	return nil
}

// UnregisterAccelerator removes the factory registered under name.
func UnregisterAccelerator(name string) {
	accelerators.Unregister(name)
}

// NewDefaultAccelerator returns a fresh instance from the preferred
// registered factory, or nil when no accelerator is registered.
func NewDefaultAccelerator() BlurAccelerator {
	return accelerators.Best()
}

// RegisteredAccelerators returns the names of all registered accelerators.
func RegisteredAccelerators() []string {
	return accelerators.Available()
}
