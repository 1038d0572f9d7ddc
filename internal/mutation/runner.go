// Package mutation runs server-side changes and their follow-up work.
//
// A Mutation pairs the request with continuations that keep the query cache
// and the notices in step with the outcome. Execute runs exactly one
// continuation and hands the Result back to the caller, which decides on
// UI-local effects such as closing a dialog.
package mutation

import (
	"context"
	"fmt"
	"time"

	"github.com/nikbrunner/bmc/internal/logger"
)

// Mutation describes one server-side change.
type Mutation[T any] struct {
	Name      string
	Fn        func(ctx context.Context) (T, error)
	OnSuccess func(T)     // optional
	OnFailure func(error) // optional
}

// Runner executes mutations. It carries the shared logger.
type Runner struct {
	log logger.Logger
}

// NewRunner creates a Runner. log may be nil.
func NewRunner(log logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{log: log.With(logger.String("component", "mutation"))}
}

// Execute runs m.Fn, then exactly one of OnSuccess or OnFailure, and returns
// the outcome. A panic inside a continuation is logged and swallowed.
func Execute[T any](ctx context.Context, r *Runner, m Mutation[T]) Result[T] {
	if r == nil {
		r = NewRunner(nil)
	}
	log := r.log.With(logger.String("mutation", m.Name))

	if m.Fn == nil {
		err := fmt.Errorf("mutation %q has no function", m.Name)
		r.continueWith(log, "OnFailure", func() { callFailure(m.OnFailure, err) })
		return Err[T](err)
	}

	start := time.Now()
	value, err := m.Fn(ctx)
	if err != nil {
		log.Warn("mutation failed", logger.Error(err), logger.Duration("elapsed", time.Since(start)))
		r.continueWith(log, "OnFailure", func() { callFailure(m.OnFailure, err) })
		return Err[T](err)
	}

	log.Info("mutation succeeded", logger.Duration("elapsed", time.Since(start)))
	r.continueWith(log, "OnSuccess", func() {
		if m.OnSuccess != nil {
			m.OnSuccess(value)
		}
	})
	return Ok(value)
}

func callFailure(fn func(error), err error) {
	if fn != nil {
		fn(err)
	}
}

func (r *Runner) continueWith(log logger.Logger, stage string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			log.Error("continuation panicked",
				logger.String("stage", stage),
				logger.String("panic", fmt.Sprint(p)),
			)
		}
	}()
	fn()
}
