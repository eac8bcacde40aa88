package main

import (
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/philMorel/letterbox"
)

// page is a single-route host page.
type page struct {
	path   string
	player *player
}

func (p *page) Path() string { return p.path }

func (p *page) FindPlayer(selector string) letterbox.Player {
	if selector != letterbox.PlayerSelector {
		return nil
	}
	return p.player
}

func (p *page) OnNavigate(func()) letterbox.Subscription {
	return letterbox.SubscriptionFunc(nil)
}

// player plays a still frame forever.
type player struct {
	mu        sync.Mutex
	container *container
	video     *video
	bar       *controlBar
	handlers  map[letterbox.Event][]func()
	paused    bool
}

func newPlayer(frame image.Image, w, h int, outDir string) *player {
	return &player{
		container: &container{w: w, h: h, outDir: outDir},
		video:     &video{frame: frame},
		bar:       &controlBar{},
		handlers:  make(map[letterbox.Event][]func()),
	}
}

func (p *player) Container() letterbox.Container   { return p.container }
func (p *player) Video() letterbox.Video           { return p.video }
func (p *player) ControlBar() letterbox.ControlBar { return p.bar }
func (p *player) ReadyState() letterbox.ReadyState { return letterbox.HaveEnoughData }

func (p *player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *player) On(ev letterbox.Event, fn func()) letterbox.Subscription {
	p.mu.Lock()
	p.handlers[ev] = append(p.handlers[ev], fn)
	p.mu.Unlock()
	return letterbox.SubscriptionFunc(nil)
}

// pause stops playback and notifies the handlers.
func (p *player) pause() {
	p.mu.Lock()
	p.paused = true
	hs := p.handlers[letterbox.EventPause]
	p.mu.Unlock()
	for _, fn := range hs {
		fn()
	}
}

type video struct {
	frame image.Image
}

func (v *video) ReadyState() letterbox.ReadyState { return letterbox.HaveEnoughData }
func (v *video) HasParent() bool                  { return true }

func (v *video) Size() (int, int) {
	b := v.frame.Bounds()
	return b.Dx(), b.Dy()
}

func (v *video) CurrentFrame() (image.Image, error) { return v.frame, nil }

// container writes every background it receives to outDir.
type container struct {
	w, h    int
	outDir  string
	written int
	err     error
}

func (c *container) ClientSize() (int, int) { return c.w, c.h }

func (c *container) SetBackground(bg letterbox.Background) {
	const prefix = "data:image/jpeg;base64,"
	if !strings.HasPrefix(bg.URL, prefix) {
		return
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(bg.URL, prefix))
	if err != nil {
		c.err = err
		return
	}
	c.written++
	name := filepath.Join(c.outDir, fmt.Sprintf("background-%03d.jpg", c.written))
	if err := os.WriteFile(name, data, 0o644); err != nil {
		c.err = err
	}
}

func (c *container) ClearBackground() {}

func (c *container) OnResize(func()) letterbox.Subscription {
	return letterbox.SubscriptionFunc(nil)
}

type controlBar struct{}

func (controlBar) AddToggle(letterbox.ToggleLabel, func()) letterbox.ToggleButton {
	return toggleButton{}
}

type toggleButton struct{}

func (toggleButton) SetLabel(letterbox.ToggleLabel) {}
func (toggleButton) Remove()                        {}
