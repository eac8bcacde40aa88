package letterbox

import "fmt"

// FrameSkip is the number of eligible ticks per render.
const FrameSkip = 2

// FrameID identifies a pending per-frame callback.
type FrameID uint64

// FrameRequester is the host's per-frame redraw notification, the
// requestAnimationFrame analog. Callbacks run on the host loop goroutine.
type FrameRequester interface {
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
}

// SchedulerState is the state of the render loop.
type SchedulerState int

const (
	StateIdle SchedulerState = iota
	StateRunning
)

// String returns the state name.
func (s SchedulerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("SchedulerState(%d)", int(s))
	}
}

// SchedulerHooks connects the scheduler to its controller.
type SchedulerHooks struct {
	// Enabled reports the user toggle.
	Enabled func() bool

	// Active reports whether playback is still running (player present and
	// not paused). The loop reschedules only while it is true.
	Active func() bool

	// Clear removes the background.
	Clear func()

	// Render runs one render step.
	Render func()
}

func (h SchedulerHooks) bound() bool {
	return h.Enabled != nil && h.Active != nil && h.Clear != nil && h.Render != nil
}

// Scheduler is the Idle/Running state machine of the per-frame render loop.
// Tick is the single "render one tick" function; it is invoked by the
// FrameRequester callback. Scheduler is not safe for concurrent use; it
// lives on the host loop goroutine.
type Scheduler struct {
	frames FrameRequester
	hooks  SchedulerHooks

	state   SchedulerState
	pending FrameID
	skip    int
	tickFn  func()
}

// NewScheduler returns an idle scheduler.
func NewScheduler(frames FrameRequester, hooks SchedulerHooks) *Scheduler {
	s := &Scheduler{frames: frames, hooks: hooks}
	s.tickFn = s.Tick
	return s
}

// State returns the current state.
func (s *Scheduler) State() SchedulerState { return s.state }

// Start moves Idle to Running and requests the first frame. It returns false
// when the loop is already running or no player is bound.
func (s *Scheduler) Start() bool {
	if s.state == StateRunning || s.frames == nil || !s.hooks.bound() {
		return false
	}
	s.state = StateRunning
	s.skip = 0
	s.schedule()
	return true
}

// Stop cancels the pending frame and resets the skip counter. Stopping an
// idle scheduler is a no-op.
func (s *Scheduler) Stop() {
	if s.state != StateRunning {
		return
	}
	s.frames.CancelFrame(s.pending)
	s.pending = 0
	s.skip = 0
	s.state = StateIdle
}

// Tick runs one frame of the loop:
//   - toggle off: clear the background, no render
//   - otherwise render on every FrameSkip-th tick and reset the counter
//
// It then reschedules while playback is active and goes Idle otherwise.
func (s *Scheduler) Tick() {
	if s.state != StateRunning {
		return
	}
	s.pending = 0

	if !s.hooks.Enabled() {
		s.hooks.Clear()
	} else {
		s.skip++
		if s.skip >= FrameSkip {
			s.skip = 0
			s.hooks.Render()
		}
	}

	// Render may have closed the controller.
	if s.state != StateRunning {
		return
	}
	if s.hooks.Active() {
		s.schedule()
		return
	}
	s.state = StateIdle
	s.skip = 0
}

func (s *Scheduler) schedule() {
	s.pending = s.frames.RequestFrame(s.tickFn)
}
