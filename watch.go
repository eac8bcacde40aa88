package letterbox

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// errNotPresent is returned by a watch probe that found nothing yet.
var errNotPresent = errors.New("letterbox: element not present yet")

// WatchConfig bounds a presence watcher. The watcher gives up once
// MaxElapsed has passed since it started.
type WatchConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
}

// DefaultWatchConfig polls from 100ms up to 1s apart for at most 10s.
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		MaxElapsed:      10 * time.Second,
	}
}

func (c WatchConfig) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(c.InitialInterval),
		backoff.WithMaxInterval(c.MaxInterval),
		backoff.WithMaxElapsedTime(c.MaxElapsed),
	)
	return backoff.WithContext(b, ctx)
}

type probeResult[T any] struct {
	v  T
	ok bool
}

// watchOnLoop polls probe on the loop goroutine with exponential backoff
// until it reports ok, ctx is done, or the watch times out. It blocks the
// calling goroutine, which must not be the loop goroutine.
func watchOnLoop[T any](ctx context.Context, loop Loop, cfg WatchConfig, probe func() (T, bool)) (T, error) {
	op := func() (T, error) {
		var zero T
		ch := make(chan probeResult[T], 1)
		loop.Post(func() {
			v, ok := probe()
			ch <- probeResult[T]{v: v, ok: ok}
		})
		select {
		case r := <-ch:
			if r.ok {
				return r.v, nil
			}
			return zero, errNotPresent
		case <-ctx.Done():
			return zero, backoff.Permanent(ctx.Err())
		}
	}
	return backoff.RetryWithData(op, cfg.backOff(ctx))
}
