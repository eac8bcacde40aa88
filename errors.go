package letterbox

import "errors"

var (
	// ErrSetupPrecondition is returned by Attach when the player container,
	// the video element, or the video's parent is missing. Nothing is
	// initialized in that case.
	ErrSetupPrecondition = errors.New("letterbox: required player elements not found")

	// ErrInvalidSize reports a non-positive surface or canvas dimension.
	ErrInvalidSize = errors.New("letterbox: invalid size")

	// ErrNoFrame is returned when the video has no frame to capture.
	ErrNoFrame = errors.New("letterbox: no video frame available")

	// ErrClosed is returned by operations on a closed Controller or Plugin.
	ErrClosed = errors.New("letterbox: closed")
)
