package letterbox

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestDefaultOptions(t *testing.T) {
	o := applyOptions(nil)

	if o.accelerator == nil {
		t.Error("default accelerator factory is nil")
	}
	if o.disableGPU {
		t.Error("GPU disabled by default")
	}
	if o.config != nil || o.toggles != nil || o.registerer != nil {
		t.Errorf("stores and registerer should be unset by default: %+v", o)
	}
	if o.watch != DefaultWatchConfig() {
		t.Errorf("watch = %+v, want %+v", o.watch, DefaultWatchConfig())
	}
}

func TestOptionsApplyInOrder(t *testing.T) {
	accel := &fakeAccelerator{}
	store := NewMemoryToggleStore()
	cfg := MapConfigStore{}
	reg := prometheus.NewRegistry()
	watch := WatchConfig{InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, MaxElapsed: time.Second}

	o := applyOptions([]Option{
		WithAccelerator(accel.factory()),
		WithoutGPU(),
		WithConfigStore(cfg),
		WithToggleStore(store),
		WithMetrics(reg),
		WithWatchConfig(watch),
	})

	if !o.disableGPU {
		t.Error("WithoutGPU not applied")
	}
	if got := o.accelerator(); got != accel {
		t.Error("WithAccelerator factory not applied")
	}
	if o.toggles != store {
		t.Error("WithToggleStore not applied")
	}
	if o.registerer != reg {
		t.Error("WithMetrics not applied")
	}
	if o.watch != watch {
		t.Errorf("watch = %+v, want %+v", o.watch, watch)
	}
	if _, ok := o.config.(MapConfigStore); !ok {
		t.Errorf("config = %T, want MapConfigStore", o.config)
	}
}

func TestLaterOptionWins(t *testing.T) {
	first := &fakeAccelerator{name: "first"}
	second := &fakeAccelerator{name: "second"}

	o := applyOptions([]Option{
		WithAccelerator(first.factory()),
		WithAccelerator(second.factory()),
	})

	if got := o.accelerator().Name(); got != "second" {
		t.Errorf("accelerator = %q, want second", got)
	}
}
