// Package letterbox renders a blurred copy of the playing video frame as the
// background of a video player whose aspect ratio does not match the video.
//
// # Overview
//
// A Controller is attached to one player. On every other frame of the host
// loop it captures the current video frame, blurs it, encodes it as JPEG, and
// publishes it as the player container's background (cover sized,
// centered). The background is only shown while the video is letterboxed and
// the user has not switched the effect off.
//
// # Backends
//
// Two rendering backends exist and one is chosen per controller at attach
// time:
//   - BackendGPU: the frame is downsampled to 1/8 of its native size and run
//     through a two-pass separable box blur on a BlurAccelerator. The output
//     canvas is half the player size and is encoded at quality 80.
//   - BackendFallback2D: the frame is scaled straight to a canvas a quarter
//     of the player size and blurred with a Gaussian filter on the CPU. The
//     result is encoded at quality 70.
//
// GPU support is opt-in via blank import:
//
//	import _ "github.com/philMorel/letterbox/gpu"
//
// If accelerator initialization fails the controller uses the 2D fallback
// for the rest of its life and never touches the accelerator again.
//
// # Host integration
//
// The package never assumes a browser. The page, the player, the control bar,
// the remote configuration store, and local storage are reached through the
// interfaces in host.go. All controller work runs on the host loop goroutine
// (see Loop and FrameLoop).
//
// # Quick Start
//
//	loop := letterbox.NewFrameLoop()
//	c, err := letterbox.Attach(ctx, loop, player,
//	    letterbox.WithConfigStore(store),
//	    letterbox.WithToggleStore(toggles),
//	)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//	go loop.Run(ctx, time.Second/60)
package letterbox
