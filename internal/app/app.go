// Package app provides application lifecycle management for the sync service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/config"
)

// SyncApp encapsulates all components needed to run the sync service.
// It provides lifecycle management and graceful shutdown capabilities
type SyncApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	mu       sync.Mutex
	cancel   context.CancelFunc
	stopOnce sync.Once
	stopErr  error
}

// Start runs the coordinator and the HTTP server until ctx is cancelled or either fails.
// A failing component cancels the other one.
func (app *SyncApp) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	app.mu.Lock()
	app.cancel = cancel
	app.mu.Unlock()

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		if err := app.components.Coordinator.Start(gctx); err != nil {
			return fmt.Errorf("sync coordinator failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("Server listening", "address", app.httpServer.Addr)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	// Shut the server down once the group context ends, whoever ended it.
	// Stop ends it by cancelling runCtx.
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), defaultReadTimeout)
		defer cancel()
		if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown failed", "error", err)
		}
		return nil
	})

	return g.Wait()
}

// Stop gracefully stops the application with the given timeout.
// It stops the sync coordinator, shuts down the HTTP server and releases the store.
// Calling Stop more than once returns the first result.
func (app *SyncApp) Stop(timeout time.Duration) error {
	app.stopOnce.Do(func() {
		slog.Info("Shutting down server...")

		if err := app.components.Coordinator.Stop(); err != nil {
			slog.Error("Failed to stop sync coordinator", "error", err)
		}

		app.mu.Lock()
		if app.cancel != nil {
			app.cancel()
		}
		app.mu.Unlock()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var errs []error
		if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server forced to shutdown: %w", err))
		}
		if app.components.Engine != nil {
			if err := app.components.Engine.Close(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}

		app.stopErr = errors.Join(errs...)
		if app.stopErr == nil {
			slog.Info("Server shutdown complete")
		}
	})
	return app.stopErr
}

// GetConfig returns the application configuration
func (app *SyncApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server (useful for testing to get the actual port)
func (app *SyncApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// Components returns the wired components
func (app *SyncApp) Components() *AppComponents {
	return app.components
}
