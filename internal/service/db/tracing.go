package database

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/otel"
)

const (
	// ServiceTracerName is the name used for the service tracer
	ServiceTracerName = "github.com/NikolayVerchenko/wb-analytics-sub001/service/db"
)

// Custom attribute keys for business context
const (
	AttrPeriodID     = attribute.Key("period.id")
	AttrFilterKind   = attribute.Key("filter.kind")
	AttrFilterStatus = attribute.Key("filter.status")
	AttrResultCount  = attribute.Key("result.count")
	AttrTaskCount    = attribute.Key("result.tasks")
)

// dbSystem maps a dialect to its semantic convention attribute.
func dbSystem(dialect string) attribute.KeyValue {
	if dialect == "postgres" {
		return semconv.DBSystemPostgreSQL
	}
	return semconv.DBSystemSqlite
}

// startSpan starts a service span tagged with the store's db.system.
// A nil tracer yields a no-op span.
func (s *dbService) startSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	opts = append([]trace.SpanStartOption{trace.WithAttributes(dbSystem(s.dialect))}, opts...)
	return otel.StartSpan(ctx, s.tracer, name, opts...)
}

// endSpan records err, if any, and ends the span.
func endSpan(span trace.Span, err error) {
	otel.End(span, err)
}
