package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/app/storage"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/service"
	pkgsync "github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/coordinator"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/state"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/telemetry"
)

// Engine groups the sync engine components built over one store.
// The one-shot CLI commands drive it directly; the server wraps it in a coordinator.
type Engine struct {
	Registry    *state.DBRegistry
	Scheduler   pkgsync.Scheduler
	Manager     pkgsync.Manager
	Maintenance *pkgsync.Maintenance
	Runner      *coordinator.Runner

	storage   storage.Factory
	telemetry *telemetry.Telemetry
}

// Storage returns the factory owning the store
func (e *Engine) Storage() storage.Factory {
	return e.storage
}

// Telemetry returns the telemetry providers
func (e *Engine) Telemetry() *telemetry.Telemetry {
	return e.telemetry
}

// Close releases the store and flushes telemetry.
func (e *Engine) Close(ctx context.Context) error {
	var errs []error
	if e.telemetry != nil {
		if err := e.telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown telemetry: %w", err))
		}
	}
	if e.storage != nil {
		e.storage.Cleanup()
	}
	return errors.Join(errs...)
}

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Engine is the sync engine
	Engine *Engine

	// Coordinator runs the engine as a service
	Coordinator coordinator.Coordinator

	// SyncService serves the HTTP API
	SyncService service.SyncService
}
