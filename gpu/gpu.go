//go:build !nogpu

// Package gpu registers the wgpu blur accelerator.
//
// Import this package to render letterbox backgrounds with the two-pass GPU
// blur. Each attached controller gets its own accelerator; if device
// acquisition or shader compilation fails, that controller falls back to the
// 2D renderer.
//
// Usage:
//
//	import _ "github.com/philMorel/letterbox/gpu" // enable GPU blur
package gpu

import (
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/philMorel/letterbox"
	gpuimpl "github.com/philMorel/letterbox/internal/gpu"
)

type providerHolder struct {
	p gpucontext.DeviceProvider
}

var provider atomic.Pointer[providerHolder]

func init() {
	if err := letterbox.RegisterAccelerator("wgpu", newAccelerator); err != nil {
		letterbox.Logger().Warn("GPU accelerator not available", "err", err)
	}
}

func newAccelerator() letterbox.BlurAccelerator {
	var p gpucontext.DeviceProvider
	if h := provider.Load(); h != nil {
		p = h.p
	}
	return gpuimpl.NewAccelerator(p)
}

// SetDeviceProvider makes accelerators created afterwards use a shared GPU
// device from an external provider (e.g., gogpu) instead of opening their
// own. The provider's Device and Queue must be hal.Device and hal.Queue.
// Pass nil to go back to private devices.
func SetDeviceProvider(p gpucontext.DeviceProvider) {
	if p == nil {
		provider.Store(nil)
		return
	}
	provider.Store(&providerHolder{p: p})
}
