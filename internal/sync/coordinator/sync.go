package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/status"
	pkgsync "github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/state"
)

// Summary counts the outcomes of one run loop pass
type Summary struct {
	Tasks     int `json:"tasks"`
	Succeeded int `json:"succeeded"`
	Empty     int `json:"empty"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

func (s *Summary) add(outcome pkgsync.Outcome) {
	s.Tasks++
	switch outcome {
	case pkgsync.OutcomeSuccess:
		s.Succeeded++
	case pkgsync.OutcomeEmpty:
		s.Empty++
	case pkgsync.OutcomeCancelled:
		s.Cancelled++
	default:
		s.Failed++
	}
}

// nextFunc selects the next task of a pass
type nextFunc func(ctx context.Context, now time.Time, excluded pkgsync.Exclusions) (*pkgsync.Task, error)

// Runner drives the foreground and background run loops over one scheduler and manager.
type Runner struct {
	scheduler pkgsync.Scheduler
	manager   pkgsync.Manager
	registry  state.Registry
	config    Config
	now       func() time.Time

	background *backgroundLoop
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithClock overrides the wall clock used for scheduling and settling
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a Runner
func NewRunner(
	scheduler pkgsync.Scheduler,
	manager pkgsync.Manager,
	registry state.Registry,
	cfg Config,
	opts ...RunnerOption,
) *Runner {
	r := &Runner{
		scheduler: scheduler,
		manager:   manager,
		registry:  registry,
		config:    cfg.withDefaults(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.background = newBackgroundLoop(r)
	return r
}

// RunForeground runs foreground tasks until the scheduler has none left, ctx is cancelled
// or shouldContinue (checked before every task, nil means always) returns false.
func (r *Runner) RunForeground(ctx context.Context, shouldContinue func() bool) Summary {
	return r.run(ctx, "foreground", r.scheduler.NextForeground, func(context.Context) bool {
		return shouldContinue == nil || shouldContinue()
	})
}

// RunBackground runs background tasks synchronously until none are left or ctx is cancelled.
func (r *Runner) RunBackground(ctx context.Context) Summary {
	return r.run(ctx, "background", r.scheduler.NextBackground, nil)
}

// run is the shared loop shape. Every dispatched period is excluded for the rest of the
// pass so a failing or empty period is not retried in a hot loop.
func (r *Runner) run(ctx context.Context, loop string, next nextFunc, gate func(context.Context) bool) Summary {
	var summary Summary
	excluded := pkgsync.Exclusions{}

	for {
		if ctx.Err() != nil {
			break
		}
		if gate != nil && !gate(ctx) {
			break
		}

		task, err := next(ctx, r.now(), excluded)
		if err != nil {
			if !pkgsync.IsCancellation(err) {
				slog.ErrorContext(ctx, "Failed to select next task", "loop", loop, "error", err)
			}
			break
		}
		if task == nil {
			break
		}
		excluded.Add(task.PeriodID)

		result := r.manager.Execute(ctx, task)
		summary.add(result.Outcome)
		r.settle(ctx, result)
		if result.Outcome == pkgsync.OutcomeCancelled {
			break
		}
	}

	slog.InfoContext(context.WithoutCancel(ctx), "Run loop pass finished",
		"loop", loop,
		"tasks", summary.Tasks,
		"succeeded", summary.Succeeded,
		"empty", summary.Empty,
		"failed", summary.Failed,
		"cancelled", summary.Cancelled)
	return summary
}

// settle records the outcome of a task the executor does not persist itself:
// Empty becomes Waiting, Failure becomes Failed. Success was written in the task's
// transaction and Cancelled leaves the registry untouched.
func (r *Runner) settle(ctx context.Context, result *pkgsync.Result) {
	if result.Outcome != pkgsync.OutcomeEmpty && result.Outcome != pkgsync.OutcomeFailure {
		return
	}

	task := result.Task
	now := r.now()
	entry, err := r.registry.GetByPeriod(ctx, task.PeriodID, task.Kind)
	if errors.Is(err, state.ErrPeriodNotFound) {
		entry = status.NewPending(task.PeriodID, task.Kind, now)
	} else if err != nil {
		slog.ErrorContext(ctx, "Failed to read registry entry",
			"period", task.PeriodID, "kind", task.Kind, "error", err)
		return
	}

	if result.Outcome == pkgsync.OutcomeEmpty {
		entry.MarkWaiting(now, now.Add(r.config.EmptyRetryDelay))
	} else {
		entry.MarkFailed(now, result.Err)
	}
	if err := r.registry.Upsert(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "Failed to record task outcome",
			"period", task.PeriodID, "kind", task.Kind, "status", entry.Status, "error", err)
	}
}

// StartBackground launches the background loop detached from ctx's caller. It returns false
// when a loop is already running.
func (r *Runner) StartBackground(ctx context.Context) bool {
	return r.background.start(ctx)
}

// StopBackground cancels the background loop and waits for it to exit.
func (r *Runner) StopBackground() {
	r.background.stop()
}

// PauseBackground makes the background loop idle until the given time.
func (r *Runner) PauseBackground(until time.Time) {
	r.background.pause(until)
}

// ResumeBackground lifts the pause window set by PauseBackground.
// Pauses held by in-flight refreshes stay in place.
func (r *Runner) ResumeBackground() {
	r.background.pause(time.Time{})
}

// BackgroundStatus reports the background loop state.
func (r *Runner) BackgroundStatus() BackgroundStatus {
	return r.background.status()
}
