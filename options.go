package letterbox

import "github.com/prometheus/client_golang/prometheus"

// Option configures a Controller or Plugin during creation.
//
// Example:
//
//	c, err := letterbox.Attach(ctx, loop, player,
//	    letterbox.WithConfigStore(store),
//	    letterbox.WithMetrics(prometheus.DefaultRegisterer),
//	)
type Option func(*options)

// options holds optional configuration for Attach.
type options struct {
	accelerator func() BlurAccelerator
	disableGPU  bool
	config      ConfigStore
	toggles     ToggleStore
	registerer  prometheus.Registerer
	watch       WatchConfig
}

// defaultOptions returns the default attach options.
func defaultOptions() options {
	return options{
		accelerator: NewDefaultAccelerator,
		watch:       DefaultWatchConfig(),
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithAccelerator overrides the registered accelerator factory. It is
// called once per attached controller.
func WithAccelerator(factory func() BlurAccelerator) Option {
	return func(o *options) {
		o.accelerator = factory
	}
}

// WithoutGPU forces the 2D fallback backend.
func WithoutGPU() Option {
	return func(o *options) {
		o.disableGPU = true
	}
}

// WithConfigStore sets the remote configuration store. Without one the
// default settings are used.
func WithConfigStore(s ConfigStore) Option {
	return func(o *options) {
		o.config = s
	}
}

// WithToggleStore sets the local storage of the enable flag. Without one
// the flag starts enabled and is not persisted.
func WithToggleStore(s ToggleStore) Option {
	return func(o *options) {
		o.toggles = s
	}
}

// WithMetrics registers the render-loop collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithWatchConfig bounds the presence watchers used while mounting the
// toggle and while waiting for the player.
func WithWatchConfig(cfg WatchConfig) Option {
	return func(o *options) {
		o.watch = cfg
	}
}
