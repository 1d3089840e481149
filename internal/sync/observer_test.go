package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/telemetry"
)

func TestLogObserver(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	observer := NewLogObserver(logger)
	task := mustTask(t, "2024-03-04")

	observer.Observe(context.Background(), Event{Type: EventTaskSucceeded, Task: task, Rows: 10, Sales: 1, Returns: 1})
	observer.Observe(context.Background(), Event{Type: EventTaskFailed, Task: task, Err: errors.New("boom")})
	observer.Observe(context.Background(), Event{Type: EventWeekRepaired, PeriodID: "2024-W09", Records: 4})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var succeeded map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &succeeded))
	assert.Equal(t, "INFO", succeeded["level"])
	assert.Equal(t, "Task completed", succeeded["msg"])
	assert.Equal(t, "2024-03-04", succeeded["period"])
	assert.Equal(t, "daily", succeeded["kind"])
	assert.EqualValues(t, 10, succeeded["rows"])

	var failed map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &failed))
	assert.Equal(t, "ERROR", failed["level"])
	assert.Equal(t, "boom", failed["error"])

	var repaired map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &repaired))
	assert.Equal(t, "WARN", repaired["level"])
	assert.Equal(t, "2024-W09", repaired["period"])
	assert.EqualValues(t, 4, repaired["records"])
}

func TestMultiObserver(t *testing.T) {
	t.Parallel()
	first, second := &eventRecorder{}, &eventRecorder{}
	var calls int
	multi := MultiObserver{first, nil, second, ObserverFunc(func(context.Context, Event) { calls++ })}

	multi.Observe(context.Background(), Event{Type: EventTaskStarted})

	assert.Equal(t, []EventType{EventTaskStarted}, first.types())
	assert.Equal(t, []EventType{EventTaskStarted}, second.types())
	assert.Equal(t, 1, calls)
}

func TestMetricsObserver(t *testing.T) {
	t.Parallel()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := telemetry.NewSyncMetrics(provider)
	require.NoError(t, err)

	observer := NewMetricsObserver(metrics)
	task := mustTask(t, "2024-W09")
	ctx := context.Background()
	observer.Observe(ctx, Event{Type: EventTaskStarted, Task: task})
	observer.Observe(ctx, Event{
		Type: EventTaskSucceeded, Task: task, Rows: 12, Sales: 3, Returns: 1, Duration: 2 * time.Second,
	})
	observer.Observe(ctx, Event{Type: EventWeekRepaired, PeriodID: "2024-W08"})

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	found := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = m
		}
	}

	hist, ok := found["wb_sync_task_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)

	rows, ok := found["wb_sync_rows_fetched_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, rows.DataPoints, 1)
	assert.Equal(t, int64(12), rows.DataPoints[0].Value)

	written, ok := found["wb_sync_records_written_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range written.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(4), total)

	repairs, ok := found["wb_sync_repairs_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, repairs.DataPoints, 1)
	assert.Equal(t, int64(1), repairs.DataPoints[0].Value)
}

func TestMetricsObserverNilMetrics(t *testing.T) {
	t.Parallel()
	observer := NewMetricsObserver(nil)
	assert.NotPanics(t, func() {
		observer.Observe(context.Background(), Event{Type: EventTaskFailed, Task: mustTask(t, "2024-03-04")})
	})
}
