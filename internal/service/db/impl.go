// Package database provides a store-backed implementation of the SyncService interface
package database

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/service"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/status"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/coordinator"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/state"
)

// Pinger checks store connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// Option configures the service
type Option func(*dbService)

// WithCoordinator enables refresh and background status
func WithCoordinator(c coordinator.Coordinator) Option {
	return func(s *dbService) {
		s.coordinator = c
	}
}

// WithTracer sets the tracer for service spans
func WithTracer(tracer trace.Tracer) Option {
	return func(s *dbService) {
		s.tracer = tracer
	}
}

// WithDialect sets the db.system attribute of service spans
func WithDialect(dialect string) Option {
	return func(s *dbService) {
		s.dialect = dialect
	}
}

type dbService struct {
	pinger      Pinger
	registry    state.Registry
	coordinator coordinator.Coordinator
	tracer      trace.Tracer
	dialect     string
}

var _ service.SyncService = (*dbService)(nil)

// New creates a SyncService over the registry
func New(pinger Pinger, registry state.Registry, opts ...Option) service.SyncService {
	s := &dbService{pinger: pinger, registry: registry}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *dbService) CheckReadiness(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "service.CheckReadiness")
	defer func() { endSpan(span, err) }()

	if s.pinger == nil {
		return fmt.Errorf("store is not configured")
	}
	if err := s.pinger.Ping(ctx); err != nil {
		return fmt.Errorf("store is unreachable: %w", err)
	}
	return nil
}

func (s *dbService) ListPeriods(ctx context.Context, opts ...service.Option) (entries []*status.Entry, err error) {
	ctx, span := s.startSpan(ctx, "service.ListPeriods")
	defer func() {
		span.SetAttributes(AttrResultCount.Int(len(entries)))
		endSpan(span, err)
	}()

	o, err := service.NewListPeriodsOptions(opts...)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(AttrFilterKind.String(string(o.Kind)), AttrFilterStatus.String(string(o.Status)))

	kinds := []period.Kind{o.Kind}
	if o.Kind == "" {
		kinds = []period.Kind{period.KindDaily, period.KindWeekly}
	}

	entries = []*status.Entry{}
	for _, kind := range kinds {
		var listed []*status.Entry
		if o.From != "" && o.To != "" {
			listed, err = s.registry.ListInRange(ctx, kind, o.From, o.To)
		} else {
			listed, err = s.registry.ListByKind(ctx, kind)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s periods: %w", kind, err)
		}
		for _, entry := range listed {
			if o.Matches(entry) {
				entries = append(entries, entry)
			}
		}
	}
	return entries, nil
}

func (s *dbService) GetPeriod(ctx context.Context, kind period.Kind, periodID string) (entry *status.Entry, err error) {
	ctx, span := s.startSpan(ctx, "service.GetPeriod",
		trace.WithAttributes(AttrPeriodID.String(periodID), AttrFilterKind.String(string(kind))))
	defer func() { endSpan(span, err) }()

	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", service.ErrInvalidFilter, kind)
	}
	entry, err = s.registry.GetByPeriod(ctx, periodID, kind)
	if errors.Is(err, state.ErrPeriodNotFound) {
		return nil, fmt.Errorf("%w: %s (%s)", service.ErrPeriodNotFound, periodID, kind)
	}
	return entry, err
}

func (s *dbService) Refresh(ctx context.Context) (summary coordinator.Summary, err error) {
	ctx, span := s.startSpan(ctx, "service.Refresh")
	defer func() {
		span.SetAttributes(AttrTaskCount.Int(summary.Tasks))
		endSpan(span, err)
	}()

	if s.coordinator == nil {
		return coordinator.Summary{}, service.ErrRefreshUnavailable
	}
	return s.coordinator.Refresh(ctx), nil
}

func (s *dbService) SyncStatus(context.Context) (coordinator.BackgroundStatus, error) {
	if s.coordinator == nil {
		return coordinator.BackgroundStatus{}, service.ErrRefreshUnavailable
	}
	return s.coordinator.Status(), nil
}
