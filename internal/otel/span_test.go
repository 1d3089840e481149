package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// newTestTracerProvider creates a tracer provider with in-memory exporter for testing.
func newTestTracerProvider(t *testing.T) (*tracetest.InMemoryExporter, trace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp
}

func TestStartSpan_NilTracer(t *testing.T) {
	t.Parallel()

	resultCtx, span := StartSpan(context.Background(), nil, "sync.task")

	require.NotNil(t, resultCtx)
	require.NotNil(t, span)
	assert.False(t, span.SpanContext().IsValid(), "nil tracer should return no-op span")
	assert.NotPanics(t, func() { End(span, errors.New("ignored")) })
}

func TestStartPeriodSpan(t *testing.T) {
	t.Parallel()

	exporter, tp := newTestTracerProvider(t)
	_, span := StartPeriodSpan(context.Background(), tp.Tracer("test"), "sync.task", "2024-W10", "weekly")
	End(span, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "sync.task", spans[0].Name)
	assert.Contains(t, spans[0].Attributes, AttrPeriodID.String("2024-W10"))
	assert.Contains(t, spans[0].Attributes, AttrPeriodKind.String("weekly"))
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
}

func TestEnd_RecordsError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus codes.Code
		wantEvent  string
	}{
		{name: "failure", err: errors.New("pq: connection refused"), wantStatus: codes.Error, wantEvent: "exception"},
		{name: "cancellation", err: context.Canceled, wantStatus: codes.Unset, wantEvent: "cancelled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			exporter, tp := newTestTracerProvider(t)
			_, span := StartSpan(context.Background(), tp.Tracer("test"), "sync.persist")
			End(span, tt.err)

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantStatus, spans[0].Status.Code)
			if tt.wantStatus == codes.Error {
				assert.Equal(t, "operation failed", spans[0].Status.Description)
			}
			require.Len(t, spans[0].Events, 1)
			assert.Equal(t, tt.wantEvent, spans[0].Events[0].Name)
		})
	}
}
