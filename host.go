package letterbox

import "image"

// Event names a player notification.
type Event string

// Player events consumed by the controller.
const (
	EventLoadedMetadata Event = "loadedmetadata"
	EventLoadedData     Event = "loadeddata"
	EventPlay           Event = "play"
	EventPause          Event = "pause"
	EventEnded          Event = "ended"
)

// ReadyState mirrors the media element ready states.
type ReadyState int

const (
	HaveNothing ReadyState = iota
	HaveMetadata
	HaveCurrentData
	HaveFutureData
	HaveEnoughData
)

// Subscription is returned by every bind operation. Unsubscribe removes the
// handler; calling it more than once is allowed.
type Subscription interface {
	Unsubscribe()
}

// SubscriptionFunc adapts a function to Subscription.
type SubscriptionFunc func()

// Unsubscribe calls f.
func (f SubscriptionFunc) Unsubscribe() {
	if f != nil {
		f()
	}
}

// Player is the host video player.
type Player interface {
	// Container returns the element whose background is painted, or nil.
	Container() Container

	// Video returns the underlying video element, or nil.
	Video() Video

	// ControlBar returns the player's control bar, or nil while it has not
	// been created yet.
	ControlBar() ControlBar

	// On subscribes fn to ev.
	On(ev Event, fn func()) Subscription

	Paused() bool
	ReadyState() ReadyState
}

// Video is the element that decodes the stream.
type Video interface {
	ReadyState() ReadyState

	// HasParent reports whether the element is attached to the page.
	HasParent() bool

	// Size returns the native pixel dimensions, 0x0 before metadata.
	Size() (w, h int)

	// CurrentFrame returns the frame currently displayed.
	CurrentFrame() (image.Image, error)
}

// Background describes the container's background image.
type Background struct {
	URL      string
	Size     string
	Position string
}

// Container is the player element behind the video.
type Container interface {
	// ClientSize returns the layout size in CSS pixels.
	ClientSize() (w, h int)

	SetBackground(bg Background)
	ClearBackground()

	// OnResize subscribes fn to container size changes.
	OnResize(fn func()) Subscription
}

// ToggleLabel is the visual state of the toggle control.
type ToggleLabel struct {
	Icon    string
	Title   string
	Opacity float64
}

// ControlBar is the player's control strip.
type ControlBar interface {
	// AddToggle inserts a button before the fullscreen control (or at the
	// end when there is none) and calls onActivate on every click.
	AddToggle(label ToggleLabel, onActivate func()) ToggleButton
}

// ToggleButton is a mounted toggle control.
type ToggleButton interface {
	SetLabel(label ToggleLabel)
	Remove()
}

// Page is the host page the plugin is injected into.
type Page interface {
	// Path returns the current location path.
	Path() string

	// FindPlayer returns the player matched by selector, or nil when the
	// element is not present yet.
	FindPlayer(selector string) Player

	// OnNavigate subscribes fn to in-app navigations.
	OnNavigate(fn func()) Subscription
}
