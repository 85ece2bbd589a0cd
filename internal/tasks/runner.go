// Package tasks runs best-effort side work off the reply path.
package tasks

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/observability/metrics"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

const DefaultTimeout = 10 * time.Second

// Func is one non-critical unit of work.
type Func func(ctx context.Context) error

// Runner starts non-critical tasks on their own goroutines. Failures and
// panics are logged and counted, never returned to the submitter.
type Runner struct {
	timeout time.Duration
	wg      sync.WaitGroup
	metrics *metrics.BotMetrics
	logger  *logging.Logger
}

// NewRunner creates a Runner. timeout <= 0 uses DefaultTimeout.
func NewRunner(timeout time.Duration, m *metrics.BotMetrics, logger *logging.Logger) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Runner{timeout: timeout, metrics: m, logger: logger}
}

// Go runs fn with a fresh context bounded by the runner timeout. The request
// context is deliberately not inherited so work survives the HTTP response.
func (r *Runner) Go(name string, fn Func) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(name, fn)
	}()
}

// Run executes fn synchronously with the same isolation as Go.
func (r *Runner) Run(name string, fn Func) error {
	return r.run(name, fn)
}

func (r *Runner) run(name string, fn Func) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("tasks: %s panicked: %v", name, rec)
			r.logger.Error("task panicked", "task", name, "panic", rec, "stack", string(debug.Stack()))
			r.metrics.ObserveTask(name, "panic")
		}
	}()

	started := time.Now()
	if err = fn(ctx); err != nil {
		r.logger.Warn("task failed", "task", name, "error", err, "duration_ms", time.Since(started).Milliseconds())
		r.metrics.ObserveTask(name, "error")
		return err
	}
	r.metrics.ObserveTask(name, "ok")
	return nil
}

// Wait blocks until in-flight tasks finish or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
