//go:build !nogpu

package gpu

import (
	"log/slog"
	"sync/atomic"
)

// logger receives device selection, shader and fallback diagnostics from
// the blur accelerator. It discards everything until the root package hands
// one down.
var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.New(slog.DiscardHandler))
}

// slogger returns the logger used by the accelerator and the blur renderer.
func slogger() *slog.Logger { return logger.Load() }

// setLogger is the target of Accelerator.SetLogger. nil restores discarding.
func setLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	logger.Store(l)
}
