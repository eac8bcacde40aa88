package letterbox

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Tick outcomes recorded by Metrics.
const (
	OutcomeRendered = "rendered"
	OutcomeDisabled = "disabled"
	OutcomeCleared  = "cleared"
	OutcomeFailed   = "failed"
)

// Metrics holds the render-loop collectors. Controllers sharing a
// Registerer share the collectors.
type Metrics struct {
	Ticks          *prometheus.CounterVec
	RenderDuration *prometheus.HistogramVec
	Backends       *prometheus.GaugeVec
	SetupFailures  prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered. Collectors already registered on reg by another
// controller are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "letterbox",
			Name:      "ticks_total",
			Help:      "Render steps by outcome.",
		}, []string{"outcome"}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "letterbox",
			Name:      "render_duration_seconds",
			Help:      "Time spent rendering and encoding one background.",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25},
		}, []string{"backend"}),
		Backends: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "letterbox",
			Name:      "controllers",
			Help:      "Attached controllers by rendering backend.",
		}, []string{"backend"}),
		SetupFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "letterbox",
			Name:      "setup_failures_total",
			Help:      "Attach calls aborted because player elements were missing.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	var err error
	if m.Ticks, err = register(reg, m.Ticks); err != nil {
		return nil, err
	}
	if m.RenderDuration, err = register(reg, m.RenderDuration); err != nil {
		return nil, err
	}
	if m.Backends, err = register(reg, m.Backends); err != nil {
		return nil, err
	}
	if m.SetupFailures, err = register(reg, m.SetupFailures); err != nil {
		return nil, err
	}
	return m, nil
}

// register registers c, returning the existing collector when an identical
// one is already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) tick(outcome string) {
	if m != nil {
		m.Ticks.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) observeRender(backend RenderingBackend, d time.Duration) {
	if m != nil {
		m.RenderDuration.WithLabelValues(backend.String()).Observe(d.Seconds())
	}
}

func (m *Metrics) attached(backend RenderingBackend, delta float64) {
	if m != nil {
		m.Backends.WithLabelValues(backend.String()).Add(delta)
	}
}

func (m *Metrics) setupFailed() {
	if m != nil {
		m.SetupFailures.Inc()
	}
}
