package core

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// ProgressFunc receives progress values in [0, 1]. Purely informational; the
// engine never consumes a return value.
type ProgressFunc func(progress float64)

// CancelFunc is polled at algorithm-defined checkpoints. Returning true makes
// the in-progress algorithm abandon work and the dispatcher surface
// ErrCancelled.
type CancelFunc func() bool

// progressRate bounds how often the progress hook fires. Iterative methods
// can checkpoint tens of thousands of times per second; the hook is a caller
// boundary and is throttled to keep its cost independent of iteration
// granularity. Terminal reports (>= 1) always go through.
const progressRate = rate.Limit(10)

// Context carries the optional progress and cancellation hooks through
// long-running algorithm bodies. It is constructed once per top-level call.
// Absent hooks mean "no progress reporting" and "never cancelled"; the
// context.Context Done channel is honored as a second cancellation source.
type Context struct {
	ctx      context.Context
	progress ProgressFunc
	cancel   CancelFunc
	limiter  *rate.Limiter
}

// NewContext builds an execution context from the request context and the
// optional hooks. A nil ctx is treated as context.Background().
func NewContext(ctx context.Context, progress ProgressFunc, cancel CancelFunc) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{
		ctx:      ctx,
		progress: progress,
		cancel:   cancel,
		limiter:  rate.NewLimiter(progressRate, 1),
	}
}

// ReportProgress forwards a clamped progress value to the hook, if any.
func (c *Context) ReportProgress(v float64) {
	if c.progress == nil {
		return
	}
	if v < 0 {
		v = 0
	}
	if v >= 1 {
		c.progress(1)
		return
	}
	if c.limiter.Allow() {
		c.progress(v)
	}
}

// Checkpoint polls the cancellation hook and the request context. Algorithms
// call it before each major iteration; a non-nil return means all work must
// be abandoned with no partial result.
func (c *Context) Checkpoint() error {
	if c.cancel != nil && c.cancel() {
		return fmt.Errorf("computation was cancelled: %w", ErrCancelled)
	}
	select {
	case <-c.ctx.Done():
		return fmt.Errorf("computation was cancelled: %w", ErrCancelled)
	default:
	}
	return nil
}
