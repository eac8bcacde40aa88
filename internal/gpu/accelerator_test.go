//go:build !nogpu

package gpu

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/philMorel/letterbox"
)

func TestAcceleratorName(t *testing.T) {
	if got := NewAccelerator(nil).Name(); got != "wgpu" {
		t.Errorf("Name() = %q, want %q", got, "wgpu")
	}
}

func TestAcceleratorBlurBeforeInit(t *testing.T) {
	a := NewAccelerator(nil)
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	if _, err := a.Blur(src, 16, 16, 1); !errors.Is(err, letterbox.ErrFallbackToCPU) {
		t.Errorf("Blur before Init = %v, want ErrFallbackToCPU", err)
	}
}

func TestAcceleratorSharedDevice(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	a := NewAccelerator(&fakeProvider{
		device: device,
		queue:  queue,
		info:   gpucontext.AdapterInfo{Name: "Noop Adapter", Type: gpucontext.AdapterTypeDiscrete},
	})
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer a.Close()

	if a.Emulated() {
		t.Error("hardware adapter reported as emulated")
	}
	if !a.externalDevice {
		t.Error("provider device not marked external")
	}
	out, err := a.Blur(image.NewRGBA(image.Rect(0, 0, 80, 60)), 400, 225, 15)
	if err != nil {
		t.Fatalf("Blur: %v", err)
	}
	if out.Rect.Dx() != 400 || out.Rect.Dy() != 225 {
		t.Errorf("output = %v, want 400x225", out.Rect)
	}

	a.Close()
	a.Close()
	if _, err := a.Blur(image.NewRGBA(image.Rect(0, 0, 8, 8)), 16, 16, 1); !errors.Is(err, letterbox.ErrFallbackToCPU) {
		t.Errorf("Blur after Close = %v, want ErrFallbackToCPU", err)
	}
}

func TestAcceleratorSoftwareAdapterEmulates(t *testing.T) {
	a := NewAccelerator(&fakeProvider{
		info: gpucontext.AdapterInfo{Name: "llvmpipe", Type: gpucontext.AdapterTypeSoftware},
	})
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer a.Close()

	if !a.Emulated() {
		t.Fatal("software adapter not emulated")
	}
	out, err := a.Blur(image.NewRGBA(image.Rect(0, 0, 20, 10)), 40, 20, 15)
	if err != nil {
		t.Fatalf("Blur: %v", err)
	}
	if out.Rect.Dx() != 40 || out.Rect.Dy() != 20 {
		t.Errorf("output = %v, want 40x20", out.Rect)
	}
}

func TestAcceleratorProviderWrongTypes(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	tests := []struct {
		name   string
		device gpucontext.Device
		queue  gpucontext.Queue
	}{
		{"no device", nil, queue},
		{"foreign device", "device", queue},
		{"no queue", device, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAccelerator(&fakeProvider{device: tt.device, queue: tt.queue})
			if err := a.Init(); err == nil {
				a.Close()
				t.Fatal("Init succeeded with unusable provider")
			}
			if _, err := a.Blur(image.NewRGBA(image.Rect(0, 0, 8, 8)), 8, 8, 1); !errors.Is(err, letterbox.ErrFallbackToCPU) {
				t.Errorf("Blur after failed Init = %v, want ErrFallbackToCPU", err)
			}
		})
	}
}

func TestProbeInitFailure(t *testing.T) {
	var accel letterbox.BlurAccelerator = NewAccelerator(nil)
	backend, err := letterbox.ProbeCapabilities(&failingProbe{accel})
	if backend != letterbox.BackendFallback2D || err == nil {
		t.Errorf("ProbeCapabilities = %v, %v", backend, err)
	}
}

// failingProbe forces Init to fail without touching a real device.
type failingProbe struct {
	letterbox.BlurAccelerator
}

func (failingProbe) Init() error { return errors.New("no vulkan") }

func TestSelectAdapter(t *testing.T) {
	mk := func(name string, dt gputypes.DeviceType) hal.ExposedAdapter {
		return hal.ExposedAdapter{Info: gputypes.AdapterInfo{Name: name, DeviceType: dt}}
	}
	tests := []struct {
		name     string
		adapters []hal.ExposedAdapter
		want     string
	}{
		{
			"discrete first",
			[]hal.ExposedAdapter{
				mk("cpu", gputypes.DeviceTypeCPU),
				mk("igpu", gputypes.DeviceTypeIntegratedGPU),
				mk("dgpu", gputypes.DeviceTypeDiscreteGPU),
			},
			"dgpu",
		},
		{
			"integrated over cpu",
			[]hal.ExposedAdapter{
				mk("cpu", gputypes.DeviceTypeCPU),
				mk("igpu", gputypes.DeviceTypeIntegratedGPU),
			},
			"igpu",
		},
		{
			"first otherwise",
			[]hal.ExposedAdapter{
				mk("other", gputypes.DeviceTypeOther),
				mk("cpu", gputypes.DeviceTypeCPU),
			},
			"other",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := selectAdapter(tt.adapters).Info.Name; got != tt.want {
				t.Errorf("selectAdapter = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmulatedBlurSpreadsBothAxes(t *testing.T) {
	// A single bright row and a single bright column on black.
	src := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := 0; i < 16; i++ {
		src.SetRGBA(i, 8, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		src.SetRGBA(8, i, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if x != 8 && y != 8 {
				src.SetRGBA(x, y, color.RGBA{A: 255})
			}
		}
	}

	e := &emulatedRenderer{}
	sharp, err := e.Blur(src, 16, 16, 0)
	if err != nil {
		t.Fatalf("Blur strength 0: %v", err)
	}
	if got := sharp.RGBAAt(2, 2).R; got != 0 {
		t.Errorf("strength 0 corner = %d, want 0", got)
	}

	blurred, err := e.Blur(src, 16, 16, 2)
	if err != nil {
		t.Fatalf("Blur: %v", err)
	}
	// radius = 2 * 1 * 2.5 = 5 texels on each axis.
	if got := blurred.RGBAAt(8, 5).R; got == 0 {
		t.Error("row not spread vertically")
	}
	if got := blurred.RGBAAt(5, 8).R; got == 0 {
		t.Error("column not spread horizontally")
	}
	if got := blurred.RGBAAt(0, 0).R; got != 0 {
		t.Errorf("far corner = %d, want 0", got)
	}
}

func TestEmulatedRendererDestroy(t *testing.T) {
	e := &emulatedRenderer{}
	e.Destroy()
	if _, err := e.Blur(image.NewRGBA(image.Rect(0, 0, 4, 4)), 4, 4, 1); !errors.Is(err, ErrRendererClosed) {
		t.Errorf("Blur after Destroy = %v, want ErrRendererClosed", err)
	}
}
