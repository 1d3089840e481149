// Package otel provides OpenTelemetry span helpers for the sync engine.
package otel

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by sync spans.
const (
	AttrPeriodID    = attribute.Key("period.id")
	AttrPeriodKind  = attribute.Key("period.kind")
	AttrPageSize    = attribute.Key("pagination.limit")
	AttrPageCursor  = attribute.Key("pagination.cursor")
	AttrRowCount    = attribute.Key("result.rows")
	AttrSaleCount   = attribute.Key("result.sales")
	AttrReturnCount = attribute.Key("result.returns")
	AttrOutcome     = attribute.Key("sync.outcome")
)

// StartSpan starts a new span if the tracer is non-nil, otherwise returns a no-op span.
// The no-op span is detached from any span in ctx, so ending it never ends the caller's span.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return tracer.Start(ctx, name, opts...)
}

// StartPeriodSpan starts a span tagged with the period being synchronized.
func StartPeriodSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name, periodID, kind string,
) (context.Context, trace.Span) {
	return StartSpan(ctx, tracer, name, trace.WithAttributes(
		AttrPeriodID.String(periodID),
		AttrPeriodKind.String(kind),
	))
}

// RecordError records an error on a span and sets the span status to error.
// The status description stays generic so SQL or connection details never land in the status;
// the full error is still attached as a span event.
// Cancellation is not an error and is only recorded as an event.
func RecordError(span trace.Span, err error) {
	if err == nil || span == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		span.AddEvent("cancelled")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "operation failed")
}

// End records err (if any) and ends the span.
func End(span trace.Span, err error) {
	if span == nil {
		return
	}
	RecordError(span, err)
	span.End()
}
