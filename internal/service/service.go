// Package service provides the read and control operations behind the HTTP API
package service

import (
	"context"
	"errors"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/status"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/coordinator"
)

var (
	// ErrPeriodNotFound is returned when a period has never been registered
	ErrPeriodNotFound = errors.New("period not found")
	// ErrInvalidFilter is returned when a list filter is malformed
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrRefreshUnavailable is returned when no coordinator is running
	ErrRefreshUnavailable = errors.New("refresh is not available")
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go SyncService

// SyncService defines the operations of the sync API
type SyncService interface {
	// CheckReadiness checks if the store is reachable
	CheckReadiness(ctx context.Context) error

	// ListPeriods returns registry entries matching the options
	ListPeriods(ctx context.Context, opts ...Option) ([]*status.Entry, error)

	// GetPeriod returns one registry entry
	GetPeriod(ctx context.Context, kind period.Kind, periodID string) (*status.Entry, error)

	// Refresh runs a foreground pass with the background loop paused
	Refresh(ctx context.Context) (coordinator.Summary, error)

	// SyncStatus reports the background loop state
	SyncStatus(ctx context.Context) (coordinator.BackgroundStatus, error)
}
