package letterbox

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Page matching.
const (
	ScenePathPrefix = "/scenes/"
	PlayerSelector  = "#VideoJsPlayer"
)

// Plugin attaches a Controller to the scene player of a host page. On every
// navigation to a scene page it waits for the player element and replaces
// the previous controller with a new one.
type Plugin struct {
	page Page
	loop Loop
	opts []Option
	cfg  WatchConfig

	nav Subscription

	// mu guards the fields below. Controllers themselves are only touched
	// on the loop goroutine.
	mu      sync.Mutex
	ctrl    *Controller
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closed  bool
	onSetup func(*Controller, error)
}

// NewPlugin returns a plugin for page. opts are passed to every Attach.
func NewPlugin(page Page, loop Loop, opts ...Option) *Plugin {
	return &Plugin{
		page: page,
		loop: loop,
		opts: opts,
		cfg:  applyOptions(opts).watch,
	}
}

// OnSetup registers fn to be called on the loop goroutine after every
// attach attempt.
func (p *Plugin) OnSetup(fn func(*Controller, error)) {
	p.mu.Lock()
	p.onSetup = fn
	p.mu.Unlock()
}

// Start subscribes to navigations and handles the current location. It must
// be called on the loop goroutine.
func (p *Plugin) Start() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.mu.Unlock()
	if p.nav == nil {
		p.nav = p.page.OnNavigate(p.navigated)
	}
	p.navigated()
	return nil
}

// MatchesScene reports whether path is a scene page.
func MatchesScene(path string) bool {
	return strings.HasPrefix(path, ScenePathPrefix)
}

// navigated tears down the current controller and, on a scene page, starts
// a watcher for the player. It runs on the loop goroutine.
func (p *Plugin) navigated() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	old := p.ctrl
	p.ctrl = nil
	p.mu.Unlock()

	if old != nil {
		old.Close()
	}

	path := p.page.Path()
	if !MatchesScene(path) {
		return
	}
	Logger().Debug("letterbox: scene page, waiting for player", "path", path)

	ctx, cancel := context.WithCancel(context.Background())
	p.mu.Lock()
	p.cancel = cancel
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		player, err := watchOnLoop(ctx, p.loop, p.cfg, func() (Player, bool) {
			pl := p.page.FindPlayer(PlayerSelector)
			return pl, pl != nil
		})
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				Logger().Warn("letterbox: player not found", "path", path, "err", err)
			}
			return
		}
		p.loop.Post(func() { p.setup(ctx, player) })
	}()
}

// setup attaches a controller unless the navigation that found player has
// been superseded.
func (p *Plugin) setup(ctx context.Context, player Player) {
	if ctx.Err() != nil {
		return
	}
	c, err := Attach(ctx, p.loop, player, p.opts...)

	p.mu.Lock()
	stale := p.closed || ctx.Err() != nil
	if err == nil && !stale {
		p.ctrl = c
	}
	fn := p.onSetup
	p.mu.Unlock()

	if err == nil && stale {
		c.Close()
		return
	}
	if err != nil {
		Logger().Error("letterbox: setup failed", "err", err)
	}
	if fn != nil {
		fn(c, err)
	}
}

// Controller returns the active controller, or nil.
func (p *Plugin) Controller() *Controller {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctrl
}

// Close stops watching, closes the active controller, and unsubscribes from
// navigations. It must be called on the loop goroutine. Closing twice is a
// no-op.
func (p *Plugin) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	ctrl := p.ctrl
	p.ctrl = nil
	p.mu.Unlock()

	if p.nav != nil {
		p.nav.Unsubscribe()
		p.nav = nil
	}
	if ctrl != nil {
		ctrl.Close()
	}
}

// Wait blocks until all player watchers have returned. It must not be
// called on the loop goroutine while the loop is needed to finish a watch.
func (p *Plugin) Wait() {
	p.wg.Wait()
}
