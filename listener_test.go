package letterbox

import (
	"errors"
	"testing"
)

type fakePage struct {
	path     string
	player   *fakePlayer
	navs     handlers
	lookups  int
	selector string
}

func (p *fakePage) Path() string { return p.path }

func (p *fakePage) FindPlayer(selector string) Player {
	p.lookups++
	p.selector = selector
	if p.player == nil {
		return nil
	}
	return p.player
}

func (p *fakePage) OnNavigate(fn func()) Subscription { return p.navs.add(fn) }

func (p *fakePage) navigate(path string) {
	p.path = path
	p.navs.emit()
}

func newTestPlugin(t *testing.T, page *fakePage) (*Plugin, *FrameLoop) {
	t.Helper()
	loop := NewFrameLoop()
	p := NewPlugin(page, loop, WithoutGPU(), WithWatchConfig(fastWatch()))
	t.Cleanup(func() {
		p.Close()
		p.Wait()
	})
	return p, loop
}

func TestMatchesScene(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/scenes/12", true},
		{"/scenes/", true},
		{"/scenes", false},
		{"/images/3", false},
		{"/", false},
	}
	for _, tt := range tests {
		if got := MatchesScene(tt.path); got != tt.want {
			t.Errorf("MatchesScene(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestPluginAttachesOnScenePage(t *testing.T) {
	page := &fakePage{path: "/scenes/1", player: newFakePlayer()}
	p, loop := newTestPlugin(t, page)

	var setups int
	p.OnSetup(func(c *Controller, err error) {
		if err != nil {
			t.Errorf("setup error: %v", err)
		}
		setups++
	})
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	stepUntil(t, loop, func() bool { return p.Controller() != nil })

	if page.selector != PlayerSelector {
		t.Errorf("selector = %q, want %q", page.selector, PlayerSelector)
	}
	if setups != 1 {
		t.Errorf("setups = %d, want 1", setups)
	}
	if p.Controller().State() != StateRunning {
		t.Errorf("State = %v, want running", p.Controller().State())
	}
}

func TestPluginWaitsForPlayer(t *testing.T) {
	page := &fakePage{path: "/scenes/1"}
	p, loop := newTestPlugin(t, page)
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}

	stepUntil(t, loop, func() bool { return page.lookups >= 2 })
	if p.Controller() != nil {
		t.Fatal("attached without a player")
	}
	page.player = newFakePlayer()
	stepUntil(t, loop, func() bool { return p.Controller() != nil })
}

func TestPluginIgnoresOtherPages(t *testing.T) {
	page := &fakePage{path: "/images/1", player: newFakePlayer()}
	p, loop := newTestPlugin(t, page)
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		loop.Step()
	}
	if page.lookups != 0 {
		t.Errorf("lookups = %d, want 0", page.lookups)
	}
	if p.Controller() != nil {
		t.Error("attached on a non-scene page")
	}
}

func TestPluginReplacesControllerOnNavigation(t *testing.T) {
	first := newFakePlayer()
	page := &fakePage{path: "/scenes/1", player: first}
	p, loop := newTestPlugin(t, page)
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	stepUntil(t, loop, func() bool { return p.Controller() != nil })
	old := p.Controller()

	second := newFakePlayer()
	page.player = second
	page.navigate("/scenes/2")
	if !old.Closed() {
		t.Error("previous controller not closed on navigation")
	}
	if first.subscribers() != 0 {
		t.Errorf("first player subscribers = %d, want 0", first.subscribers())
	}

	stepUntil(t, loop, func() bool { return p.Controller() != nil })
	if p.Controller() == old {
		t.Error("controller not replaced")
	}
	if len(second.bar.buttons) != 1 {
		t.Errorf("second player buttons = %d, want 1", len(second.bar.buttons))
	}

	page.navigate("/performers/4")
	if p.Controller() != nil {
		t.Error("controller kept after leaving scene pages")
	}
}

func TestPluginSetupFailure(t *testing.T) {
	player := newFakePlayer()
	player.video.noParent = true
	page := &fakePage{path: "/scenes/1", player: player}
	p, loop := newTestPlugin(t, page)

	var gotErr error
	done := false
	p.OnSetup(func(_ *Controller, err error) {
		gotErr = err
		done = true
	})
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	stepUntil(t, loop, func() bool { return done })
	if !errors.Is(gotErr, ErrSetupPrecondition) {
		t.Errorf("setup error = %v, want ErrSetupPrecondition", gotErr)
	}
	if p.Controller() != nil {
		t.Error("controller set after failed setup")
	}
}

func TestPluginClose(t *testing.T) {
	page := &fakePage{path: "/scenes/1", player: newFakePlayer()}
	p, loop := newTestPlugin(t, page)
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	stepUntil(t, loop, func() bool { return p.Controller() != nil })
	c := p.Controller()

	p.Close()
	p.Close()
	if !c.Closed() {
		t.Error("controller not closed")
	}
	if page.navs.len() != 0 {
		t.Errorf("navigation subscribers = %d, want 0", page.navs.len())
	}
	if err := p.Start(); !errors.Is(err, ErrClosed) {
		t.Errorf("Start after Close = %v, want ErrClosed", err)
	}
}
