package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	pkgsync "github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync"
)

// ErrAlreadyStarted is returned by Start when the coordinator has been started before
var ErrAlreadyStarted = errors.New("sync coordinator already started")

// Coordinator runs the sync engine as a long-lived service
type Coordinator interface {
	// Start runs recovery and corruption repair, then a foreground pass followed by a
	// background start on every poll tick.
	// Blocks until context is cancelled or startup recovery fails.
	// A coordinator runs once; later calls return ErrAlreadyStarted
	Start(ctx context.Context) error

	// Stop gracefully stops the coordinator and the background loop
	Stop() error

	// Refresh pauses the background loop, runs one foreground pass and lifts the pause
	Refresh(ctx context.Context) Summary

	// Status reports the background loop state
	Status() BackgroundStatus
}

// defaultCoordinator is the default implementation of Coordinator
type defaultCoordinator struct {
	runner      *Runner
	maintenance *pkgsync.Maintenance
	config      Config

	// foreground serializes foreground passes between ticks and manual refreshes
	foreground sync.Mutex

	// Lifecycle management
	mu         sync.Mutex
	started    bool
	cancelFunc context.CancelFunc
	done       chan struct{}
}

// New creates a new coordinator with injected dependencies
func New(runner *Runner, maintenance *pkgsync.Maintenance) Coordinator {
	return &defaultCoordinator{
		runner:      runner,
		maintenance: maintenance,
		config:      runner.config,
		done:        make(chan struct{}),
	}
}

// calculatePollingInterval returns base with a random jitter of up to ±base/4 applied.
func calculatePollingInterval(base time.Duration) time.Duration {
	jitter := base / 4
	if jitter <= 0 {
		return base
	}
	//nolint:gosec // G404: Non-cryptographic randomness is sufficient for polling jitter
	jitterOffset := time.Duration(rand.Int64N(int64(2*jitter))) - jitter
	return base + jitterOffset
}

// Start begins the service loop
func (c *defaultCoordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	coordCtx, cancel := context.WithCancel(ctx)
	c.started = true
	c.cancelFunc = cancel
	c.mu.Unlock()
	defer func() {
		c.runner.StopBackground()
		cancel()
		close(c.done)
		slog.Info("Sync coordinator shutting down")
	}()

	slog.Info("Starting sync coordinator", "base_interval", c.config.PollInterval)

	if err := c.startup(coordCtx); err != nil {
		return err
	}

	pollingInterval := calculatePollingInterval(c.config.PollInterval)
	slog.Info("Configured coordinator poll interval",
		"base_interval", c.config.PollInterval,
		"actual_interval", pollingInterval)

	ticker := time.NewTicker(pollingInterval)
	defer ticker.Stop()

	c.tick(coordCtx)

	for {
		select {
		case <-ticker.C:
			c.tick(coordCtx)
			ticker.Reset(calculatePollingInterval(c.config.PollInterval))
		case <-coordCtx.Done():
			slog.Info("Sync coordinator stopping")
			return nil
		}
	}
}

// startup runs recovery and the corruption sweep. A failed sweep is logged, not fatal.
func (c *defaultCoordinator) startup(ctx context.Context) error {
	if c.maintenance == nil {
		return nil
	}
	recovered, err := c.maintenance.Recover(ctx)
	if err != nil {
		return fmt.Errorf("failed to recover registry: %w", err)
	}
	slog.InfoContext(ctx, "Registry recovered", "periods", recovered)

	repaired, err := c.maintenance.RepairCorruption(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Corruption repair failed", "error", err, "repaired", repaired)
		return nil
	}
	if len(repaired) > 0 {
		slog.WarnContext(ctx, "Corrupted weeks cleared", "weeks", repaired)
	}
	return nil
}

// tick runs one foreground pass and then makes sure the background loop is running.
func (c *defaultCoordinator) tick(ctx context.Context) {
	c.foreground.Lock()
	c.runner.RunForeground(ctx, nil)
	c.foreground.Unlock()

	if ctx.Err() != nil {
		return
	}
	if !c.runner.StartBackground(ctx) {
		slog.DebugContext(ctx, "Background loop already running")
	}
}

// Stop gracefully stops the coordinator
func (c *defaultCoordinator) Stop() error {
	c.mu.Lock()
	cancel := c.cancelFunc
	c.mu.Unlock()
	if cancel != nil {
		slog.Info("Stopping sync coordinator")
		cancel()
		<-c.done
	}
	return nil
}

// Refresh runs a foreground pass with the background loop paused
func (c *defaultCoordinator) Refresh(ctx context.Context) Summary {
	release := c.runner.background.hold(c.runner.now().Add(c.config.RefreshPause))
	defer release()

	c.foreground.Lock()
	defer c.foreground.Unlock()
	return c.runner.RunForeground(ctx, nil)
}

// Status reports the background loop state
func (c *defaultCoordinator) Status() BackgroundStatus {
	return c.runner.BackgroundStatus()
}
