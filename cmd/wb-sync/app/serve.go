package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/app"
)

// defaultGracefulTimeout bounds the shutdown of the coordinator and HTTP server.
const defaultGracefulTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sync service and its HTTP API",
		Long: `Run the sync service: pending migrations are applied, interrupted periods are
recovered, corrupted weeks are cleared, and then the foreground and background
loops run on every poll tick until the process receives SIGINT or SIGTERM.

The HTTP API exposes health, readiness, the period registry, manual refresh,
background status and, when enabled, Prometheus metrics.`,
		RunE: runServe,
	}
	cmd.Flags().String("address", ":8080", "Address to listen on")
	addConfigFlag(cmd.Flags())
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	v, err := newViper(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	address := v.GetString("address")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting sync service", "address", address)

	syncApp, err := app.NewSyncApp(ctx, app.WithConfig(cfg), app.WithAddress(address))
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- syncApp.Start(ctx)
	}()

	select {
	case startErr := <-errCh:
		// A component failed before any signal arrived.
		return errors.Join(startErr, syncApp.Stop(defaultGracefulTimeout))
	case <-ctx.Done():
		slog.Info("Received shutdown signal")
	}

	if err := syncApp.Stop(defaultGracefulTimeout); err != nil {
		return err
	}
	return <-errCh
}
