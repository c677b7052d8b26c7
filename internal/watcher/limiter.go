package watcher

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RenderLimiter caps how often watch mode re-renders reports when the
// checker rewrites snapshot files in quick succession.
type RenderLimiter struct {
	inner *rate.Limiter
}

// NewRenderLimiter creates a token bucket limiter.
// r: renders per second. b: burst size.
func NewRenderLimiter(r float64, b int) *RenderLimiter {
	if b < 1 {
		b = 1
	}
	return &RenderLimiter{
		inner: rate.NewLimiter(rate.Limit(r), b),
	}
}

// Allow reports whether a render may happen now.
func (l *RenderLimiter) Allow() bool {
	return l.inner.AllowN(time.Now(), 1)
}

// Wait blocks until a render is permitted.
func (l *RenderLimiter) Wait(ctx context.Context) error {
	return l.inner.WaitN(ctx, 1)
}
