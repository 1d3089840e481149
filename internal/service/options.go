package service

import (
	"fmt"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/status"
)

// ListPeriodsOptions is the options for the ListPeriods operation
type ListPeriodsOptions struct {
	Kind   period.Kind
	Status status.Status
	// From and To bound period identifiers inclusively; they require Kind
	From string
	To   string
}

// Option is a function that sets an option for the ListPeriods operation
type Option func(*ListPeriodsOptions) error

// NewListPeriodsOptions applies opts and validates the result.
func NewListPeriodsOptions(opts ...Option) (*ListPeriodsOptions, error) {
	o := &ListPeriodsOptions{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if (o.From != "" || o.To != "") && o.Kind == "" {
		return nil, fmt.Errorf("%w: a range requires a kind", ErrInvalidFilter)
	}
	if o.From != "" && o.To != "" && o.From > o.To {
		return nil, fmt.Errorf("%w: range start %s is after its end %s", ErrInvalidFilter, o.From, o.To)
	}
	return o, nil
}

// WithKind restricts the listing to one period kind
func WithKind(kind string) Option {
	return func(o *ListPeriodsOptions) error {
		k := period.Kind(kind)
		if !k.Valid() {
			return fmt.Errorf("%w: unknown kind %q", ErrInvalidFilter, kind)
		}
		o.Kind = k
		return nil
	}
}

// WithStatus restricts the listing to one status
func WithStatus(st string) Option {
	return func(o *ListPeriodsOptions) error {
		s := status.Status(st)
		if !s.Valid() {
			return fmt.Errorf("%w: unknown status %q", ErrInvalidFilter, st)
		}
		o.Status = s
		return nil
	}
}

// WithRange restricts the listing to period identifiers between from and to.
// Either bound may be empty.
func WithRange(from, to string) Option {
	return func(o *ListPeriodsOptions) error {
		o.From = from
		o.To = to
		return nil
	}
}

// Matches reports whether entry satisfies the kind and status filters.
func (o *ListPeriodsOptions) Matches(entry *status.Entry) bool {
	if o.Kind != "" && entry.Kind != o.Kind {
		return false
	}
	if o.Status != "" && entry.Status != o.Status {
		return false
	}
	if o.From != "" && entry.PeriodID < o.From {
		return false
	}
	if o.To != "" && entry.PeriodID > o.To {
		return false
	}
	return true
}
