package report

import (
	"context"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
)

//go:generate mockgen -destination=mocks/mock_fetcher.go -package=mocks -source=fetcher.go Fetcher

// PageRequest describes one page of report rows.
type PageRequest struct {
	Range period.Range
	Kind  period.Kind
	// After is the cursor: only rows after this row ID are returned. Zero starts from the beginning.
	After int64
	// Limit is the maximum number of rows in the page.
	Limit int
}

// Fetcher fetches pages of report rows.
//
// Transient failures (rate limiting, network errors) are absorbed by the implementation.
// A returned error is terminal for the request.
type Fetcher interface {
	FetchPage(ctx context.Context, req PageRequest) ([]Row, error)
}
