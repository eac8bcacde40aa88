package letterbox

import (
	"context"
	"sync"
	"time"
)

// Loop is the host event loop: per-frame callbacks plus a task queue for
// work that must run on the loop goroutine.
type Loop interface {
	FrameRequester
	Post(fn func())
}

type frameRequest struct {
	id FrameID
	fn func()
}

// FrameLoop is a single-goroutine cooperative loop for Go hosts. Tasks and
// frame callbacks run in Step, in the order they were posted or requested.
// RequestFrame, CancelFrame, and Post are safe to call from any goroutine.
type FrameLoop struct {
	mu     sync.Mutex
	nextID FrameID
	frames []frameRequest
	tasks  []func()

	// batch holds the callbacks of the frame being run by Step.
	batch []frameRequest
}

var _ Loop = (*FrameLoop)(nil)

// NewFrameLoop returns an empty loop.
func NewFrameLoop() *FrameLoop {
	return &FrameLoop{}
}

// RequestFrame queues fn for the next frame.
func (l *FrameLoop) RequestFrame(fn func()) FrameID {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	l.frames = append(l.frames, frameRequest{id: l.nextID, fn: fn})
	return l.nextID
}

// CancelFrame drops a pending frame callback. Unknown IDs are ignored.
func (l *FrameLoop) CancelFrame(id FrameID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, f := range l.frames {
		if f.id == id {
			l.frames = append(l.frames[:i], l.frames[i+1:]...)
			return
		}
	}
	for i := range l.batch {
		if l.batch[i].id == id {
			l.batch[i].fn = nil
			return
		}
	}
}

// Post queues fn to run before the next frame's callbacks.
func (l *FrameLoop) Post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
}

// Pending returns the number of queued frame callbacks.
func (l *FrameLoop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.frames)
}

// Step runs all queued tasks, then the frame callbacks requested before the
// step began. Callbacks requested during the step run on the next one.
// It returns the number of frame callbacks run.
func (l *FrameLoop) Step() int {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.mu.Unlock()
	for _, fn := range tasks {
		fn()
	}

	l.mu.Lock()
	l.batch = l.frames
	l.frames = nil
	n := len(l.batch)
	l.mu.Unlock()

	ran := 0
	for i := 0; i < n; i++ {
		l.mu.Lock()
		fn := l.batch[i].fn
		l.mu.Unlock()
		if fn == nil {
			continue
		}
		fn()
		ran++
	}

	l.mu.Lock()
	l.batch = nil
	l.mu.Unlock()
	return ran
}

// Run calls Step every interval until ctx is done.
func (l *FrameLoop) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Step()
		}
	}
}
