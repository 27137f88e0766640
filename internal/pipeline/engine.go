package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lorekeep/lore/internal/reason"
)

// Policy bounds how many times a stage may attempt its work and how
// long the engine waits between attempts.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// Stage is one step of the documentation pipeline.
type Stage interface {
	// Name identifies the stage in logs and error messages.
	Name() string

	// Requires lists the context keys that must be populated before
	// the stage runs.
	Requires() []Key

	// Provides lists the context keys the stage populates on success.
	Provides() []Key

	// Policy returns the stage's retry budget.
	Policy() Policy

	// Run executes the stage against the shared run context. The
	// context carries the attempt number for the response cache.
	Run(ctx context.Context, rc *Context) error
}

type sleepFunc func(context.Context, time.Duration) error

// Engine runs stages in order, checking each stage's contract against
// the run context and retrying failed attempts within the stage's
// policy.
type Engine struct {
	stages []Stage
	logger *log.Logger
	sleep  sleepFunc
}

// NewEngine wraps an ordered stage list. The stage order is the
// caller's responsibility; the engine only verifies that each stage's
// requirements are met when its turn comes.
func NewEngine(stages []Stage, logger *log.Logger) *Engine {
	return &Engine{stages: stages, logger: logger, sleep: sleepCtx}
}

// Run executes every stage in order against rc. It stops at the first
// stage whose retry budget is exhausted, whose contract is violated, or
// whose context is cancelled.
func (e *Engine) Run(ctx context.Context, rc *Context) error {
	start := time.Now()
	for _, stage := range e.stages {
		if err := e.runStage(ctx, stage, rc); err != nil {
			return err
		}
	}
	e.logger.Info("pipeline complete", "stages", len(e.stages), "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

func (e *Engine) runStage(ctx context.Context, stage Stage, rc *Context) error {
	name := stage.Name()
	for _, key := range stage.Requires() {
		if !rc.Has(key) {
			return &ContractError{Stage: name, Key: key, Pre: true}
		}
	}

	policy := stage.Policy()
	e.logger.Info("stage starting", "stage", name)
	start := time.Now()

	err := retry(ctx, policy, e.sleep, func(attempt int, err error) {
		e.logger.Warn("stage attempt failed",
			"stage", name,
			"attempt", attempt,
			"of", policy.Attempts,
			"retry_in", policy.Delay,
			"err", err)
	}, func(actx context.Context) error {
		return stage.Run(actx, rc)
	})
	if err != nil {
		return fmt.Errorf("stage %q: %w", name, err)
	}

	for _, key := range stage.Provides() {
		if !rc.Has(key) {
			return &ContractError{Stage: name, Key: key}
		}
	}
	e.logger.Debug("stage complete", "stage", name, "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// retry runs fn up to policy.Attempts times, waiting policy.Delay
// between attempts. Each attempt's context carries its 1-based attempt
// number so the response cache serves stored answers only to first
// attempts. onFail is called after every failed attempt that will be
// retried.
func retry(ctx context.Context, policy Policy, sleep sleepFunc, onFail func(attempt int, err error), fn func(context.Context) error) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		err = fn(reason.WithAttempt(ctx, attempt))
		if err == nil {
			return nil
		}
		if attempt == attempts || ctx.Err() != nil {
			break
		}
		if onFail != nil {
			onFail(attempt, err)
		}
		if serr := sleep(ctx, policy.Delay); serr != nil {
			return err
		}
	}
	return err
}

// sleepCtx waits for d or until ctx is cancelled, whichever comes
// first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
