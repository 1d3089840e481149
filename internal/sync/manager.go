package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/aggregate"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/otel"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/report"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/status"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/state"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/writer"
)

// TracerName is the name of the sync engine tracer
const TracerName = "github.com/NikolayVerchenko/wb-analytics-sub001/sync"

// Outcome classifies how a task ended.
type Outcome int

const (
	// OutcomeSuccess means rows were fetched and persisted
	OutcomeSuccess Outcome = iota
	// OutcomeEmpty means the upstream returned no rows; nothing was persisted
	OutcomeEmpty
	// OutcomeFailure means the task failed; see Result.Err
	OutcomeFailure
	// OutcomeCancelled means the context was cancelled before the task finished
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailure:
		return "failure"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Stages of a task, reported by Error
const (
	StageRegister = "register"
	StageFetch    = "fetch"
	StagePersist  = "persist"
)

// Error is a task failure tagged with the stage that failed
type Error struct {
	Err     error
	Stage   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func stageError(stage string, err error) *Error {
	return &Error{Err: err, Stage: stage, Message: fmt.Sprintf("%s failed: %v", stage, err)}
}

// Result contains the result of one executed task
type Result struct {
	Task    Task
	Outcome Outcome
	Rows    int
	Pages   int
	Sales   int
	Returns int
	// CursorStalled is set when pagination stopped because the cursor did not advance
	CursorStalled bool
	Duration      time.Duration
	Err           error
}

// Manager drives one task end to end: register, fetch, aggregate, persist and update the registry.
//
//go:generate mockgen -destination=mocks/mock_manager.go -package=mocks github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync Manager
type Manager interface {
	Execute(ctx context.Context, task *Task) *Result
}

// ManagerOption configures the default manager.
type ManagerOption func(*defaultSyncManager)

// WithPageSize sets the page row limit.
func WithPageSize(n int) ManagerOption {
	return func(m *defaultSyncManager) {
		if n > 0 {
			m.pageSize = n
		}
	}
}

// WithRule sets the flow classification rule.
func WithRule(rule aggregate.Rule) ManagerOption {
	return func(m *defaultSyncManager) {
		m.rule = rule
	}
}

// WithObserver sets the observer receiving task events.
func WithObserver(o Observer) ManagerOption {
	return func(m *defaultSyncManager) {
		if o != nil {
			m.observer = o
		}
	}
}

// WithTracer enables tracing spans around tasks and pages.
func WithTracer(t trace.Tracer) ManagerOption {
	return func(m *defaultSyncManager) {
		m.tracer = t
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *defaultSyncManager) {
		m.now = now
	}
}

// defaultSyncManager is the default implementation of Manager
type defaultSyncManager struct {
	fetcher  report.Fetcher
	writer   writer.SyncWriter
	registry state.Registry
	rule     aggregate.Rule
	pageSize int
	observer Observer
	tracer   trace.Tracer
	now      func() time.Time
}

// NewDefaultSyncManager creates a new defaultSyncManager
func NewDefaultSyncManager(
	fetcher report.Fetcher, w writer.SyncWriter, registry state.Registry, opts ...ManagerOption,
) Manager {
	m := &defaultSyncManager{
		fetcher:  fetcher,
		writer:   w,
		registry: registry,
		rule:     aggregate.DefaultRule(),
		pageSize: report.DefaultPageSize,
		observer: NopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Execute runs task and classifies its outcome. It never marks Waiting or Failed itself;
// the caller settles the registry entry from the result.
func (m *defaultSyncManager) Execute(ctx context.Context, task *Task) (result *Result) {
	start := m.now()
	result = &Result{Task: *task}

	ctx, span := otel.StartPeriodSpan(ctx, m.tracer, "sync.task", task.PeriodID, string(task.Kind))
	defer func() {
		result.Duration = m.now().Sub(start)
		span.SetAttributes(
			otel.AttrOutcome.String(result.Outcome.String()),
			otel.AttrRowCount.Int(result.Rows),
			otel.AttrSaleCount.Int(result.Sales),
			otel.AttrReturnCount.Int(result.Returns),
		)
		otel.End(span, result.Err)
		m.observe(ctx, result)
	}()

	m.observer.Observe(ctx, Event{Type: EventTaskStarted, Time: start, Task: task})

	if _, err := m.registry.RegisterPending(ctx, task.PeriodID, task.Kind); err != nil {
		return m.fail(ctx, result, StageRegister, err)
	}

	rows, err := m.fetchAll(ctx, task, result)
	if err != nil {
		return m.fail(ctx, result, StageFetch, err)
	}
	result.Rows = len(rows)
	if len(rows) == 0 {
		result.Outcome = OutcomeEmpty
		return result
	}

	sales, returns := aggregate.Aggregate(rows, m.rule)
	data := writer.NewSyncData(sales, returns)
	update := m.markSuccess(task)

	var written writer.Result
	if task.Kind == period.KindWeekly {
		written, err = m.writer.SaveFinal(ctx, data, task.Range, update)
	} else {
		written, err = m.writer.SaveTemporary(ctx, data, task.Range, update)
	}
	if err != nil {
		return m.fail(ctx, result, StagePersist, err)
	}

	result.Sales = written.Sales
	result.Returns = written.Returns
	result.Outcome = OutcomeSuccess
	return result
}

// fetchAll pages through the report. It stops on a short page or a cursor that does not advance.
// Rows already seen (by row ID) are dropped so a repeated page never double counts.
func (m *defaultSyncManager) fetchAll(ctx context.Context, task *Task, result *Result) ([]report.Row, error) {
	var (
		rows   []report.Row
		cursor int64
		seen   = make(map[int64]struct{})
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := m.fetchPage(ctx, task, cursor)
		if err != nil {
			return nil, err
		}
		result.Pages++

		for _, row := range page {
			if row.RowID != 0 {
				if _, dup := seen[row.RowID]; dup {
					continue
				}
				seen[row.RowID] = struct{}{}
			}
			rows = append(rows, row)
		}

		if len(page) < m.pageSize {
			return rows, nil
		}
		next := page[len(page)-1].RowID
		if next <= cursor {
			result.CursorStalled = true
			m.observer.Observe(ctx, Event{
				Type: EventCursorStalled, Time: m.now(), Task: task, Pages: result.Pages, Rows: len(rows),
			})
			return rows, nil
		}
		cursor = next
	}
}

func (m *defaultSyncManager) fetchPage(ctx context.Context, task *Task, cursor int64) (page []report.Row, err error) {
	ctx, span := otel.StartSpan(ctx, m.tracer, "sync.fetch_page", trace.WithAttributes(
		otel.AttrPeriodID.String(task.PeriodID),
		otel.AttrPageCursor.Int64(cursor),
		otel.AttrPageSize.Int(m.pageSize),
	))
	defer func() {
		span.SetAttributes(otel.AttrRowCount.Int(len(page)))
		otel.End(span, err)
	}()

	return m.fetcher.FetchPage(ctx, report.PageRequest{
		Range: task.Range,
		Kind:  task.Kind,
		After: cursor,
		Limit: m.pageSize,
	})
}

// markSuccess returns the in-transaction registry update for a persisted task.
func (m *defaultSyncManager) markSuccess(task *Task) writer.RegistryUpdate {
	return func(ctx context.Context, registry state.Registry) error {
		now := m.now()
		entry, err := registry.GetByPeriod(ctx, task.PeriodID, task.Kind)
		if errors.Is(err, state.ErrPeriodNotFound) {
			entry = status.NewPending(task.PeriodID, task.Kind, now)
		} else if err != nil {
			return err
		}
		entry.MarkSuccess(now)
		if err := registry.Upsert(ctx, entry); err != nil {
			return err
		}
		if task.Kind == period.KindWeekly {
			return registry.MarkFinal(ctx, task.PeriodID, task.Kind)
		}
		return nil
	}
}

func (m *defaultSyncManager) fail(ctx context.Context, result *Result, stage string, err error) *Result {
	if IsCancellation(err) && ctx.Err() != nil {
		result.Outcome = OutcomeCancelled
		result.Err = err
		return result
	}
	result.Outcome = OutcomeFailure
	result.Err = stageError(stage, err)
	return result
}

func (m *defaultSyncManager) observe(ctx context.Context, result *Result) {
	event := Event{
		Time:     m.now(),
		Task:     &result.Task,
		Rows:     result.Rows,
		Pages:    result.Pages,
		Sales:    result.Sales,
		Returns:  result.Returns,
		Duration: result.Duration,
		Err:      result.Err,
	}
	switch result.Outcome {
	case OutcomeSuccess:
		event.Type = EventTaskSucceeded
	case OutcomeEmpty:
		event.Type = EventTaskEmpty
	case OutcomeCancelled:
		event.Type = EventTaskCancelled
		// Observers still get a live context after cancellation.
		ctx = context.WithoutCancel(ctx)
	default:
		event.Type = EventTaskFailed
	}
	m.observer.Observe(ctx, event)
}
