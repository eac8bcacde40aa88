//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // registers the Vulkan backend

	"github.com/philMorel/letterbox"
)

// blurBackend is the part of the renderer the accelerator drives.
type blurBackend interface {
	Blur(src *image.RGBA, outW, outH int, strength float64) (*image.RGBA, error)
	Destroy()
}

// Accelerator implements letterbox.BlurAccelerator on wgpu/hal.
//
// Each Accelerator owns its GPU objects. When it also opened the device (no
// provider was given) the device and instance are destroyed on Close; a
// shared device is left untouched.
type Accelerator struct {
	mu sync.Mutex

	provider gpucontext.DeviceProvider

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	renderer blurBackend

	adapterName    string
	emulated       bool
	externalDevice bool
}

var _ letterbox.BlurAccelerator = (*Accelerator)(nil)

// NewAccelerator returns an accelerator that opens its own device, or
// reuses provider's device when provider is non-nil.
func NewAccelerator(provider gpucontext.DeviceProvider) *Accelerator {
	return &Accelerator{provider: provider}
}

// Name returns the accelerator name.
func (a *Accelerator) Name() string { return "wgpu" }

// SetLogger routes internal/gpu logging through l.
func (a *Accelerator) SetLogger(l *slog.Logger) { setLogger(l) }

// Emulated reports whether blur passes run on the CPU because the adapter is
// a software adapter.
func (a *Accelerator) Emulated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.emulated
}

// Init acquires a device and builds the blur programs. Any failure is
// returned wrapped; the caller treats it as a permanent fallback.
func (a *Accelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.renderer != nil {
		return nil
	}

	var err error
	if a.provider != nil {
		err = a.useProvider(a.provider)
	} else {
		err = a.openDevice()
	}
	if err != nil {
		a.releaseLocked()
		return err
	}

	if a.emulated {
		a.renderer = &emulatedRenderer{}
		slogger().Info("gpu: software adapter, emulating blur passes", "adapter", a.adapterName)
		return nil
	}

	r := NewBlurRenderer(a.device, a.queue)
	if err := r.Init(); err != nil {
		a.releaseLocked()
		return fmt.Errorf("gpu: build blur programs: %w", err)
	}
	a.renderer = r
	slogger().Info("gpu: blur accelerator initialized", "adapter", a.adapterName)
	return nil
}

// useProvider adopts a shared device.
func (a *Accelerator) useProvider(p gpucontext.DeviceProvider) error {
	info := p.AdapterInfo()
	a.adapterName = info.Name
	if info.Type == gpucontext.AdapterTypeSoftware {
		a.emulated = true
		return nil
	}
	device, ok := p.Device().(hal.Device)
	if !ok || device == nil {
		return errors.New("gpu: provider Device is not hal.Device")
	}
	queue, ok := p.Queue().(hal.Queue)
	if !ok || queue == nil {
		return errors.New("gpu: provider Queue is not hal.Queue")
	}
	a.device = device
	a.queue = queue
	a.externalDevice = true
	return nil
}

// openDevice creates an instance on the Vulkan backend and opens the best
// adapter, preferring discrete then integrated GPUs.
func (a *Accelerator) openDevice() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return errors.New("gpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("gpu: create instance: %w", err)
	}
	a.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return errors.New("gpu: no GPU adapters found")
	}
	selected := selectAdapter(adapters)
	a.adapterName = selected.Info.Name
	if selected.Info.DeviceType == gputypes.DeviceTypeCPU {
		a.emulated = true
		return nil
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("gpu: open device: %w", err)
	}
	a.device = openDev.Device
	a.queue = openDev.Queue
	return nil
}

func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	for _, want := range []gputypes.DeviceType{gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU} {
		for i := range adapters {
			if adapters[i].Info.DeviceType == want {
				return &adapters[i]
			}
		}
	}
	return &adapters[0]
}

// Blur runs both passes. It never falls back on its own; errors go to the
// caller, which skips the tick.
func (a *Accelerator) Blur(src *image.RGBA, outW, outH int, strength float64) (*image.RGBA, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.renderer == nil {
		return nil, letterbox.ErrFallbackToCPU
	}
	return a.renderer.Blur(src, outW, outH, strength)
}

// Close releases every GPU object. Safe to call multiple times.
func (a *Accelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.releaseLocked()
}

func (a *Accelerator) releaseLocked() {
	if a.renderer != nil {
		a.renderer.Destroy()
		a.renderer = nil
	}
	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
		}
		if a.instance != nil {
			a.instance.Destroy()
		}
	}
	a.device = nil
	a.queue = nil
	a.instance = nil
	a.externalDevice = false
	a.emulated = false
}
