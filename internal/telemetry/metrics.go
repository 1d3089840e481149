package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetricsMeterName is the name used for the sync metrics meter
const SyncMetricsMeterName = "github.com/NikolayVerchenko/wb-analytics-sub001/sync"

// SyncMetrics holds the OpenTelemetry instruments for sync task metrics
type SyncMetrics struct {
	taskDuration   metric.Float64Histogram
	rowsFetched    metric.Int64Counter
	recordsWritten metric.Int64Counter
	repairs        metric.Int64Counter
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	taskDuration, err := meter.Float64Histogram(
		"wb_sync_task_duration_seconds",
		metric.WithDescription("Duration of sync tasks in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1800),
	)
	if err != nil {
		return nil, err
	}

	rowsFetched, err := meter.Int64Counter(
		"wb_sync_rows_fetched_total",
		metric.WithDescription("Report rows fetched from the upstream"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, err
	}

	recordsWritten, err := meter.Int64Counter(
		"wb_sync_records_written_total",
		metric.WithDescription("Aggregated records written to the store"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	repairs, err := meter.Int64Counter(
		"wb_sync_repairs_total",
		metric.WithDescription("Weeks cleared by the corruption repair sweep"),
		metric.WithUnit("{week}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		taskDuration:   taskDuration,
		rowsFetched:    rowsFetched,
		recordsWritten: recordsWritten,
		repairs:        repairs,
	}, nil
}

// RecordTaskDuration records how long one task took and how it ended
func (m *SyncMetrics) RecordTaskDuration(ctx context.Context, kind, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.taskDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

// AddRowsFetched counts fetched report rows
func (m *SyncMetrics) AddRowsFetched(ctx context.Context, kind string, rows int) {
	if m == nil || rows == 0 {
		return
	}
	m.rowsFetched.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("kind", kind)))
}

// AddRecordsWritten counts records written for one flow
func (m *SyncMetrics) AddRecordsWritten(ctx context.Context, kind, flow string, records int) {
	if m == nil || records == 0 {
		return
	}
	m.recordsWritten.Add(ctx, int64(records), metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("flow", flow),
	))
}

// AddRepairs counts weeks cleared by corruption repair
func (m *SyncMetrics) AddRepairs(ctx context.Context, weeks int) {
	if m == nil || weeks == 0 {
		return
	}
	m.repairs.Add(ctx, int64(weeks))
}
