package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/aggregate"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/telemetry"
)

// EventType names an engine state transition.
type EventType string

// Engine event types
const (
	EventTaskStarted     EventType = "task_started"
	EventTaskEmpty       EventType = "task_empty"
	EventTaskSucceeded   EventType = "task_succeeded"
	EventTaskFailed      EventType = "task_failed"
	EventTaskCancelled   EventType = "task_cancelled"
	EventCursorStalled   EventType = "cursor_stalled"
	EventWeekRepaired    EventType = "week_repaired"
	EventPeriodRecovered EventType = "period_recovered"
)

// Event describes one engine state transition.
type Event struct {
	Type EventType
	Time time.Time
	// Task is set for task events.
	Task *Task
	// PeriodID is set for repair and recovery events.
	PeriodID string

	Rows     int
	Pages    int
	Sales    int
	Returns  int
	Records  int
	Duration time.Duration
	Err      error
}

// Observer receives engine events. Implementations must not block.
type Observer interface {
	Observe(ctx context.Context, event Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, event Event)

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, event Event) {
	f(ctx, event)
}

// MultiObserver fans events out to every observer in order.
type MultiObserver []Observer

// Observe delivers event to every non-nil observer.
func (m MultiObserver) Observe(ctx context.Context, event Event) {
	for _, o := range m {
		if o != nil {
			o.Observe(ctx, event)
		}
	}
}

// NopObserver discards events.
type NopObserver struct{}

// Observe does nothing.
func (NopObserver) Observe(context.Context, Event) {}

// LogObserver writes events as structured log records.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates a LogObserver. A nil logger uses slog.Default.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

// Observe logs event.
func (o *LogObserver) Observe(ctx context.Context, event Event) {
	attrs := []any{"event", string(event.Type)}
	if event.Task != nil {
		attrs = append(attrs, "period", event.Task.PeriodID, "kind", string(event.Task.Kind))
	}
	if event.PeriodID != "" {
		attrs = append(attrs, "period", event.PeriodID)
	}

	switch event.Type {
	case EventTaskStarted:
		o.logger.InfoContext(ctx, "Task started", append(attrs, "range", event.Task.Range.String())...)
	case EventTaskEmpty:
		o.logger.InfoContext(ctx, "Task returned no rows", append(attrs, "duration", event.Duration)...)
	case EventTaskSucceeded:
		o.logger.InfoContext(ctx, "Task completed", append(attrs,
			"rows", event.Rows, "pages", event.Pages,
			"sales", event.Sales, "returns", event.Returns,
			"duration", event.Duration)...)
	case EventTaskFailed:
		o.logger.ErrorContext(ctx, "Task failed", append(attrs, "error", event.Err, "duration", event.Duration)...)
	case EventTaskCancelled:
		o.logger.InfoContext(ctx, "Task cancelled", attrs...)
	case EventCursorStalled:
		o.logger.WarnContext(ctx, "Report cursor did not advance, stopping pagination",
			append(attrs, "pages", event.Pages, "rows", event.Rows)...)
	case EventWeekRepaired:
		o.logger.WarnContext(ctx, "Corrupted week cleared for re-fetch", append(attrs, "records", event.Records)...)
	case EventPeriodRecovered:
		o.logger.InfoContext(ctx, "Period recovered for retry", attrs...)
	default:
		o.logger.DebugContext(ctx, "Sync event", attrs...)
	}
}

// MetricsObserver records task events as sync metrics.
type MetricsObserver struct {
	metrics *telemetry.SyncMetrics
}

// NewMetricsObserver creates a MetricsObserver. Nil metrics record nothing.
func NewMetricsObserver(metrics *telemetry.SyncMetrics) *MetricsObserver {
	return &MetricsObserver{metrics: metrics}
}

// Observe records event.
func (o *MetricsObserver) Observe(ctx context.Context, event Event) {
	switch event.Type {
	case EventTaskEmpty, EventTaskSucceeded, EventTaskFailed, EventTaskCancelled:
		kind := string(event.Task.Kind)
		o.metrics.RecordTaskDuration(ctx, kind, outcomeOf(event.Type).String(), event.Duration)
		o.metrics.AddRowsFetched(ctx, kind, event.Rows)
		if event.Type == EventTaskSucceeded {
			o.metrics.AddRecordsWritten(ctx, kind, string(aggregate.FlowSale), event.Sales)
			o.metrics.AddRecordsWritten(ctx, kind, string(aggregate.FlowReturn), event.Returns)
		}
	case EventWeekRepaired:
		o.metrics.AddRepairs(ctx, 1)
	}
}

func outcomeOf(t EventType) Outcome {
	switch t {
	case EventTaskSucceeded:
		return OutcomeSuccess
	case EventTaskEmpty:
		return OutcomeEmpty
	case EventTaskCancelled:
		return OutcomeCancelled
	default:
		return OutcomeFailure
	}
}
