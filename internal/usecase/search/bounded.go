package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/kailas-cloud/labsearch/internal/domain/search/query"
	"github.com/kailas-cloud/labsearch/internal/domain/search/result"
	"github.com/kailas-cloud/labsearch/internal/metrics"
)

// DefaultPerIndexTimeout bounds a single index search when the caller sets none.
const DefaultPerIndexTimeout = 10 * time.Second

// indexExecutor is the single-index search the wrapper bounds.
type indexExecutor interface {
	Execute(ctx context.Context, index string, q query.Compiled) result.Index
}

// Bounded runs index searches on a worker pool and races them against a timeout.
//
// Cancellation is best-effort. On timeout the executor's context is cancelled and
// Run returns a TIMEOUT_ERROR result at once, but an engine call that ignores its
// context keeps running, and keeps its worker slot, until it returns on its own.
// The timeout therefore caps reported latency, not resource usage.
type Bounded struct {
	exec    indexExecutor
	sem     *semaphore.Weighted
	timeout time.Duration
	logger  *zap.Logger
}

// NewBounded wraps exec. maxWorkers <= 0 means no pool limit; timeout <= 0 means
// DefaultPerIndexTimeout.
func NewBounded(exec indexExecutor, maxWorkers int, timeout time.Duration, logger *zap.Logger) *Bounded {
	if timeout <= 0 {
		timeout = DefaultPerIndexTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bounded{exec: exec, timeout: timeout, logger: logger}
	if maxWorkers > 0 {
		b.sem = semaphore.NewWeighted(int64(maxWorkers))
	}
	return b
}

// Timeout returns the default per-index timeout.
func (b *Bounded) Timeout() time.Duration { return b.timeout }

// Run searches index under timeout (the default when timeout <= 0). Waiting for a
// worker slot counts against the timeout. Run never panics.
func (b *Bounded) Run(ctx context.Context, index string, q query.Compiled, timeout time.Duration) result.Index {
	if timeout <= 0 {
		timeout = b.timeout
	}

	ctx, cancel := context.WithTimeoutCause(ctx, timeout, errIndexBudget)
	defer cancel()

	done := make(chan result.Index, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- failure(index, q, result.KindUnknown, fmt.Sprintf("internal error: %v", r))
			}
		}()

		if b.sem != nil {
			if err := b.sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer b.sem.Release(1)
		}
		done <- b.exec.Execute(ctx, index, q)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		msg := timeoutMessage(context.Cause(ctx), index, timeout)
		b.logger.Warn("Index search timed out",
			zap.String("index", index),
			zap.Duration("timeout", timeout),
			zap.String("reason", msg),
		)
		metrics.IndexSearchTotal.WithLabelValues(index, string(result.KindTimeout)).Inc()
		return failure(index, q, result.KindTimeout, msg)
	}
}

// errIndexBudget is the cancellation cause when the per-index timeout fires.
var errIndexBudget = errors.New("per-index timeout exceeded")

// timeoutMessage names the budget that actually ran out: the per-index timeout,
// the caller's deadline, or an explicit cancellation.
func timeoutMessage(cause error, index string, timeout time.Duration) string {
	switch {
	case errors.Is(cause, errIndexBudget):
		return fmt.Sprintf("search of index %q did not complete within %s", index, timeout)
	case errors.Is(cause, context.Canceled):
		return fmt.Sprintf("search of index %q was cancelled before completing", index)
	default:
		return fmt.Sprintf("search of index %q did not complete before the overall search deadline", index)
	}
}
