package manager

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hupe1980/crewmesh/delegation"
	"github.com/hupe1980/crewmesh/logging"
	"github.com/hupe1980/crewmesh/specialist"
)

// Options holds configuration overrides passed to New().
type Options struct {
	// MaxAttempts bounds invocation attempts per step (minimum 1).
	MaxAttempts int
	// RetryBackoff is the base delay between attempts; it grows linearly
	// with the attempt number.
	RetryBackoff time.Duration
	// MaxParallel limits concurrent delegations within a stage.
	MaxParallel int
	// Logger receives orchestration diagnostics.
	Logger logging.Logger
}

// Manager decomposes goals into delegations and drives them to completion.
// It owns Delegation Messages only for the duration of a single run; results
// and per-step reports are handed back to the caller.
type Manager struct {
	pool   *specialist.Pool
	router *delegation.Router

	maxAttempts  int
	retryBackoff time.Duration
	maxParallel  int
	logger       logging.Logger
}

// New constructs a Manager routing against the given specialist pool.
func New(pool *specialist.Pool, optFns ...func(o *Options)) *Manager {
	opts := Options{
		MaxAttempts:  3,
		RetryBackoff: 200 * time.Millisecond,
		MaxParallel:  4,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.MaxParallel < 1 {
		opts.MaxParallel = 1
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Manager{
		pool:         pool,
		router:       delegation.NewRouter(pool),
		maxAttempts:  opts.MaxAttempts,
		retryBackoff: opts.RetryBackoff,
		maxParallel:  opts.MaxParallel,
		logger:       opts.Logger,
	}
}

// Run executes the plan stage by stage. Steps within a stage run
// concurrently, bounded by MaxParallel; every stage is fully joined before
// the next one starts, so callers can safely persist aggregated results once
// Run returns. The returned reports cover every attempted step, including
// the failed one, and are always valid even when err is non-nil.
func (m *Manager) Run(ctx context.Context, plan Plan) (*Results, []StepReport, error) {
	results := NewResults()
	reports := make([]StepReport, 0, plan.Steps())

	for _, stage := range plan.Stages {
		stageReports := m.runStage(ctx, stage, results)
		reports = append(reports, stageReports...)

		for _, report := range stageReports {
			if report.Err != nil {
				return results, reports, NewStepFailed(report.Role, report.Err)
			}
		}

		if err := ctx.Err(); err != nil {
			return results, reports, NewStepFailed("", err)
		}
	}

	return results, reports, nil
}

// runStage dispatches all steps of one stage and joins them before returning.
func (m *Manager) runStage(ctx context.Context, stage Stage, results *Results) []StepReport {
	if len(stage) == 1 {
		return []StepReport{m.runStep(ctx, stage[0], results)}
	}

	reports := make([]StepReport, len(stage))
	sem := make(chan struct{}, m.maxParallel)

	var wg sync.WaitGroup
	for i, step := range stage {
		wg.Add(1)
		go func(i int, step Step) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			reports[i] = m.runStep(ctx, step, results)
		}(i, step)
	}
	wg.Wait()

	return reports
}

// runStep encodes and routes the delegation message, then invokes the
// specialist with bounded retries. Protocol errors fail the step immediately:
// a malformed or unroutable message would stay malformed on retry.
func (m *Manager) runStep(ctx context.Context, step Step, results *Results) StepReport {
	report := StepReport{Key: step.key(), Role: step.Role}
	start := time.Now()
	defer func() { report.Duration = time.Since(start) }()

	taskContext := step.Context
	if step.BuildContext != nil {
		taskContext = step.BuildContext(results)
	}

	msg, err := delegation.Encode(step.Role, step.Task, taskContext)
	if err != nil {
		report.Attempts = 1
		report.Err = err
		m.logger.Warn("manager.step.protocol_error", "role", step.Role, "error", err.Error())
		return report
	}

	if err := m.router.Route(msg); err != nil {
		report.Attempts = 1
		report.Err = err
		m.logger.Warn("manager.step.unroutable", "role", step.Role, "error", err.Error())
		return report
	}

	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		report.Attempts = attempt
		attemptStart := time.Now()

		result, err := m.pool.Invoke(ctx, msg.Coworker, msg.Task, msg.Context)
		if err == nil {
			results.Set(step.key(), result)
			m.logDelegation(step.Role, attempt, time.Since(attemptStart), nil)
			return report
		}

		report.Err = err
		m.logDelegation(step.Role, attempt, time.Since(attemptStart), err)

		var agentErr *specialist.AgentError
		if !errors.As(err, &agentErr) {
			return report
		}
		if attempt == m.maxAttempts {
			return report
		}
		if err := m.backoff(ctx, attempt); err != nil {
			report.Err = err
			return report
		}
	}

	return report
}

// logDelegation records one invocation attempt, preferring the dedicated
// delegation record when the configured logger supports it.
func (m *Manager) logDelegation(role string, attempt int, dur time.Duration, err error) {
	if dl, ok := m.logger.(logging.DelegationLogger); ok {
		dl.LogDelegation(role, attempt, dur, err == nil, err)
		return
	}
	if err == nil {
		m.logger.Debug("manager.step.success", "role", role, "attempt", attempt)
		return
	}
	m.logger.Warn("manager.step.attempt_failed", "role", role, "attempt", attempt, "error", err.Error())
}

// backoff sleeps for the attempt-scaled delay or returns early on cancellation.
func (m *Manager) backoff(ctx context.Context, attempt int) error {
	if m.retryBackoff <= 0 {
		return nil
	}

	timer := time.NewTimer(m.retryBackoff * time.Duration(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
