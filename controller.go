package letterbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Background placement applied with every rendered image.
const (
	backgroundSize     = "cover"
	backgroundPosition = "center"
)

// Controller owns the blurred background of one player: the chosen backend,
// the renderer, the toggle control, and the render loop. All methods must be
// called on the loop goroutine.
type Controller struct {
	id        string
	log       *slog.Logger
	loop      Loop
	player    Player
	video     Video
	container Container

	settings Settings
	backend  RenderingBackend
	accel    BlurAccelerator
	renderer Renderer
	toggle   *Toggle
	sched    *Scheduler
	metrics  *Metrics

	subs   []Subscription
	button ToggleButton
	cancel context.CancelFunc
	closed bool
}

// Attach builds a controller for player. It verifies the player elements,
// loads the settings once, probes the GPU once, restores the toggle, binds
// the player events, and starts the loop when the video is already playing.
//
// Attach returns ErrSetupPrecondition and initializes nothing when the
// container, the video, or the video's parent is missing. Attach may block
// while the settings are fetched.
func Attach(ctx context.Context, loop Loop, player Player, opts ...Option) (*Controller, error) {
	o := applyOptions(opts)

	metrics, err := NewMetrics(o.registerer)
	if err != nil {
		Logger().Warn("letterbox: metrics registration failed", "err", err)
		metrics = nil
	}

	if loop == nil || player == nil {
		metrics.setupFailed()
		return nil, ErrSetupPrecondition
	}
	container := player.Container()
	video := player.Video()
	if container == nil || video == nil || !video.HasParent() {
		Logger().Error("letterbox: player elements missing, not attaching")
		metrics.setupFailed()
		return nil, ErrSetupPrecondition
	}

	id := uuid.NewString()
	c := &Controller{
		id:        id,
		log:       Logger().With("controller", id),
		loop:      loop,
		player:    player,
		video:     video,
		container: container,
		metrics:   metrics,
	}

	c.settings, _ = LoadSettings(ctx, o.config)
	c.selectBackend(o)
	c.toggle = RestoreToggle(o.toggles)
	c.sched = NewScheduler(loop, SchedulerHooks{
		Enabled: c.toggle.Enabled,
		Active:  c.active,
		Clear:   c.disabledTick,
		Render:  c.renderTick,
	})

	c.subs = append(c.subs,
		player.On(EventPlay, c.start),
		player.On(EventPause, c.stop),
		player.On(EventEnded, c.stop),
		player.On(EventLoadedMetadata, c.updateVisibility),
		player.On(EventLoadedData, c.updateVisibility),
		container.OnResize(c.updateVisibility),
	)

	watchCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mountToggle(watchCtx, o.watch)

	c.metrics.attached(c.backend, 1)
	c.log.Info("letterbox: attached",
		"backend", c.backend,
		"strength", c.settings.BlurStrength,
		"enabled", c.toggle.Enabled())

	c.updateVisibility()
	if video.ReadyState() >= HaveMetadata && player.ReadyState() >= HaveMetadata && !player.Paused() {
		c.start()
	}
	return c, nil
}

// selectBackend probes the accelerator once. On any failure the accelerator
// is released and never touched again.
func (c *Controller) selectBackend(o options) {
	var accel BlurAccelerator
	if !o.disableGPU && o.accelerator != nil {
		accel = o.accelerator()
	}
	backend, err := ProbeCapabilities(accel)
	if err != nil {
		if accel != nil {
			accel.Close()
		}
		if !errors.Is(err, ErrFallbackToCPU) || accel != nil {
			c.log.Warn("letterbox: GPU unavailable, using 2D fallback", "err", err)
		}
		c.backend = BackendFallback2D
		c.renderer = NewFallbackRenderer()
		return
	}
	c.backend = backend
	c.accel = accel
	c.renderer = NewGPURenderer(accel)
}

// mountToggle adds the toggle to the control bar. When the bar does not
// exist yet a bounded watcher mounts it once it appears.
func (c *Controller) mountToggle(ctx context.Context, cfg WatchConfig) {
	if c.tryMount() {
		return
	}
	go func() {
		_, err := watchOnLoop(ctx, c.loop, cfg, func() (struct{}, bool) {
			if c.closed {
				return struct{}{}, true
			}
			return struct{}{}, c.tryMount()
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			c.log.Warn("letterbox: control bar not found, toggle not mounted", "err", err)
		}
	}()
}

func (c *Controller) tryMount() bool {
	if c.button != nil {
		return true
	}
	bar := c.player.ControlBar()
	if bar == nil {
		return false
	}
	c.button = bar.AddToggle(c.toggle.Label(), c.onToggle)
	return true
}

// onToggle flips the flag. Turning it off clears the background right away
// instead of waiting for the next tick.
func (c *Controller) onToggle() {
	if c.closed {
		return
	}
	enabled := c.toggle.Flip()
	if !enabled {
		c.clearBackground()
	}
	if c.button != nil {
		c.button.SetLabel(c.toggle.Label())
	}
	c.log.Debug("letterbox: toggled", "enabled", enabled)
}

func (c *Controller) start() {
	if c.closed {
		return
	}
	c.sched.Start()
}

func (c *Controller) stop() {
	c.sched.Stop()
}

func (c *Controller) active() bool {
	return !c.closed && !c.player.Paused()
}

func (c *Controller) clearBackground() {
	c.container.ClearBackground()
}

// disabledTick is a loop tick with the toggle off.
func (c *Controller) disabledTick() {
	c.clearBackground()
	c.metrics.tick(OutcomeDisabled)
}

// updateVisibility clears the background while the player cannot show a
// frame. It never renders.
func (c *Controller) updateVisibility() {
	if c.closed {
		return
	}
	pw, ph := c.container.ClientSize()
	vw, vh := c.video.Size()
	if pw <= 0 || ph <= 0 || vw <= 0 || vh <= 0 ||
		c.video.ReadyState() < HaveMetadata || c.player.ReadyState() < HaveMetadata {
		c.clearBackground()
	}
}

// renderTick renders one background. It clears the background while the
// player or the video cannot show a frame. A failed render keeps the
// previous background.
func (c *Controller) renderTick() {
	if c.closed {
		return
	}
	pw, ph := c.container.ClientSize()
	vw, vh := c.video.Size()
	if pw <= 0 || ph <= 0 || vw <= 0 || vh <= 0 || c.video.ReadyState() < HaveCurrentData {
		c.clearBackground()
		c.metrics.tick(OutcomeCleared)
		return
	}
	if !AspectMismatch(AspectRatio(pw, ph), AspectRatio(vw, vh)) {
		c.clearBackground()
		c.metrics.tick(OutcomeCleared)
		return
	}

	cw, ch := CanvasSize(pw, ph, c.backend)
	frame, err := c.video.CurrentFrame()
	if err != nil {
		c.log.Debug("letterbox: frame capture failed", "err", err)
		c.metrics.tick(OutcomeFailed)
		return
	}

	start := time.Now()
	img, err := c.renderer.Render(frame, cw, ch, c.settings.BlurStrength)
	c.metrics.observeRender(c.backend, time.Since(start))
	if err != nil {
		if errors.Is(err, ErrInvalidSize) {
			c.clearBackground()
			c.metrics.tick(OutcomeCleared)
			return
		}
		c.log.Warn("letterbox: render failed", "backend", c.backend, "err", err)
		c.metrics.tick(OutcomeFailed)
		return
	}
	if !img.Valid() {
		c.clearBackground()
		c.metrics.tick(OutcomeCleared)
		return
	}
	c.container.SetBackground(Background{
		URL:      img.DataURL(),
		Size:     backgroundSize,
		Position: backgroundPosition,
	})
	c.metrics.tick(OutcomeRendered)
}

// Close stops the loop, unbinds every event, removes the toggle, releases
// the GPU, and clears the background. Closing twice is a no-op.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.sched.Stop()
	c.closed = true
	for _, s := range c.subs {
		s.Unsubscribe()
	}
	c.subs = nil
	if c.cancel != nil {
		c.cancel()
	}
	if c.button != nil {
		c.button.Remove()
		c.button = nil
	}
	if c.accel != nil {
		c.accel.Close()
		c.accel = nil
	}
	if fr, ok := c.renderer.(*FallbackRenderer); ok {
		fr.Close()
	}
	c.clearBackground()
	c.metrics.attached(c.backend, -1)
	c.log.Info("letterbox: closed")
}

// ID returns the controller's instance ID used in log records.
func (c *Controller) ID() string { return c.id }

// Backend returns the backend chosen at attach time.
func (c *Controller) Backend() RenderingBackend { return c.backend }

// Settings returns the settings loaded at attach time.
func (c *Controller) Settings() Settings { return c.settings }

// Enabled reports the toggle flag.
func (c *Controller) Enabled() bool { return c.toggle.Enabled() }

// Toggle activates the toggle as a click on the control would.
func (c *Controller) Toggle() { c.onToggle() }

// State returns the render loop state.
func (c *Controller) State() SchedulerState { return c.sched.State() }

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool { return c.closed }
