package letterbox

import (
	"errors"
	"image"
	"image/color"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// solidFrame returns a w x h frame filled with c.
func solidFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

type fakeVideo struct {
	ready    ReadyState
	noParent bool
	w, h     int
	frame    image.Image
	frameErr error
}

func (v *fakeVideo) ReadyState() ReadyState { return v.ready }
func (v *fakeVideo) HasParent() bool        { return !v.noParent }
func (v *fakeVideo) Size() (int, int)       { return v.w, v.h }

func (v *fakeVideo) CurrentFrame() (image.Image, error) {
	if v.frameErr != nil {
		return nil, v.frameErr
	}
	return v.frame, nil
}

type fakeContainer struct {
	w, h    int
	bg      *Background
	sets    int
	clears  int
	resizes handlers
}

func (c *fakeContainer) ClientSize() (int, int) { return c.w, c.h }

func (c *fakeContainer) SetBackground(bg Background) {
	c.bg = &bg
	c.sets++
}

func (c *fakeContainer) ClearBackground() {
	c.bg = nil
	c.clears++
}

func (c *fakeContainer) OnResize(fn func()) Subscription {
	return c.resizes.add(fn)
}

// handlers is a subscribable list of callbacks.
type handlers struct {
	next int
	fns  map[int]func()
}

func (h *handlers) add(fn func()) Subscription {
	if h.fns == nil {
		h.fns = make(map[int]func())
	}
	h.next++
	id := h.next
	h.fns[id] = fn
	return SubscriptionFunc(func() { delete(h.fns, id) })
}

func (h *handlers) emit() {
	for _, fn := range h.fns {
		fn()
	}
}

func (h *handlers) len() int { return len(h.fns) }

type fakeButton struct {
	label      ToggleLabel
	onActivate func()
	removed    bool
}

func (b *fakeButton) SetLabel(l ToggleLabel) { b.label = l }
func (b *fakeButton) Remove()                { b.removed = true }
func (b *fakeButton) click()                 { b.onActivate() }

type fakeBar struct {
	buttons []*fakeButton
}

func (b *fakeBar) AddToggle(label ToggleLabel, onActivate func()) ToggleButton {
	btn := &fakeButton{label: label, onActivate: onActivate}
	b.buttons = append(b.buttons, btn)
	return btn
}

type fakePlayer struct {
	container *fakeContainer
	video     *fakeVideo
	bar       *fakeBar
	paused    bool
	ready     ReadyState
	events    map[Event]*handlers
}

// newFakePlayer returns a playing 800x450 player showing a 4:3 video, so
// the video is pillarboxed.
func newFakePlayer() *fakePlayer {
	return &fakePlayer{
		container: &fakeContainer{w: 800, h: 450},
		video: &fakeVideo{
			ready: HaveEnoughData,
			w:     640,
			h:     480,
			frame: solidFrame(640, 480, color.RGBA{R: 200, G: 40, B: 40, A: 255}),
		},
		bar:    &fakeBar{},
		ready:  HaveEnoughData,
		events: make(map[Event]*handlers),
	}
}

func (p *fakePlayer) Container() Container {
	if p.container == nil {
		return nil
	}
	return p.container
}

func (p *fakePlayer) Video() Video {
	if p.video == nil {
		return nil
	}
	return p.video
}

func (p *fakePlayer) ControlBar() ControlBar {
	if p.bar == nil {
		return nil
	}
	return p.bar
}

func (p *fakePlayer) On(ev Event, fn func()) Subscription {
	h, ok := p.events[ev]
	if !ok {
		h = &handlers{}
		p.events[ev] = h
	}
	return h.add(fn)
}

func (p *fakePlayer) Paused() bool           { return p.paused }
func (p *fakePlayer) ReadyState() ReadyState { return p.ready }

func (p *fakePlayer) emit(ev Event) {
	if h, ok := p.events[ev]; ok {
		h.emit()
	}
}

func (p *fakePlayer) subscribers() int {
	n := p.container.resizes.len()
	for _, h := range p.events {
		n += h.len()
	}
	return n
}

// fakeAccelerator records calls and returns an output-sized opaque canvas.
type fakeAccelerator struct {
	mu        sync.Mutex
	name      string
	initErr   error
	blurErr   error
	inits     int
	closes    int
	blurs     int
	lastSrc   image.Rectangle
	lastOutW  int
	lastOutH  int
	lastPower float64
	logger    *slog.Logger
}

func (a *fakeAccelerator) Name() string {
	if a.name == "" {
		return "fake"
	}
	return a.name
}

func (a *fakeAccelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inits++
	return a.initErr
}

func (a *fakeAccelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closes++
}

func (a *fakeAccelerator) Blur(src *image.RGBA, outW, outH int, strength float64) (*image.RGBA, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.blurs++
	a.lastSrc = src.Bounds()
	a.lastOutW, a.lastOutH = outW, outH
	a.lastPower = strength
	if a.blurErr != nil {
		return nil, a.blurErr
	}
	return solidFrame(outW, outH, color.RGBA{R: 90, G: 20, B: 20, A: 255}), nil
}

func (a *fakeAccelerator) SetLogger(l *slog.Logger) { a.logger = l }

func (a *fakeAccelerator) factory() func() BlurAccelerator {
	return func() BlurAccelerator { return a }
}

var errInitFailed = errors.New("no adapter")

// fastWatch is a watch config suitable for tests that drive the loop.
func fastWatch() WatchConfig {
	return WatchConfig{
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		MaxElapsed:      2 * time.Second,
	}
}

// stepUntil steps loop until cond holds or the deadline passes.
func stepUntil(t *testing.T, loop *FrameLoop, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached before deadline")
		}
		loop.Step()
		time.Sleep(time.Millisecond)
	}
}
