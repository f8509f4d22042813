// Package mutation runs state-changing remote calls. A mutation executes
// exactly once per invocation, its success effects run only after the call
// settles successfully, and failures are reported through one Notifier.
package mutation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/roots/admin-console/internal/core/domain"
)

// Hooks receive mutation outcomes for instrumentation.
type Hooks struct {
	Settled func(name string, elapsed time.Duration, err error)
}

// Runner executes mutations for one console session.
type Runner struct {
	notifier Notifier
	log      zerolog.Logger
	hooks    Hooks
}

// NewRunner returns a Runner reporting to notifier.
func NewRunner(notifier Notifier, log zerolog.Logger, hooks Hooks) *Runner {
	return &Runner{notifier: notifier, log: log, hooks: hooks}
}

// Success pushes a success notice.
func (r *Runner) Success(message string) {
	r.notifier.Notify(Notice{Level: LevelSuccess, Message: message})
}

// Fail pushes the readable message of err as an error notice.
func (r *Runner) Fail(err error) {
	r.notifier.Notify(Notice{Level: LevelError, Message: domain.ErrorMessage(err)})
}

// Mutation describes one state-changing call.
type Mutation[A, R any] struct {
	Name string
	Fn   func(ctx context.Context, args A) (R, error)
	// OnSuccess runs after Fn succeeds, never before and never on failure.
	OnSuccess func(ctx context.Context, args A, result R)
	// LocalErrors keeps failures off the notifier; the caller shows them
	// inline instead.
	LocalErrors bool
}

// Run executes m once. Concurrent runs are independent. Fn and OnSuccess
// run detached from ctx cancellation so a dropped request cannot abort a
// call that is already moving state on the server.
func (m Mutation[A, R]) Run(ctx context.Context, r *Runner, args A) (R, error) {
	var zero R
	detached := context.WithoutCancel(ctx)

	start := time.Now()
	res, err := m.call(detached, args)
	if r.hooks.Settled != nil {
		r.hooks.Settled(m.Name, time.Since(start), err)
	}

	if err != nil {
		r.log.Warn().Err(err).Str("mutation", m.Name).Msg("mutation failed")
		if !m.LocalErrors {
			r.Fail(err)
		}
		return zero, err
	}

	if m.OnSuccess != nil {
		m.OnSuccess(detached, args, res)
	}
	r.log.Info().Str("mutation", m.Name).Dur("elapsed", time.Since(start)).Msg("mutation settled")
	return res, nil
}

func (m Mutation[A, R]) call(ctx context.Context, args A) (res R, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("mutation %s panicked: %v", m.Name, rec)
		}
	}()
	return m.Fn(ctx, args)
}
