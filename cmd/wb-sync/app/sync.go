package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/app"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/coordinator"
)

func newSyncCmd(engineOpts []app.SyncAppOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one foreground pass over the current week and exit",
		Long: `Recover interrupted periods, then fetch every day of the current week that is
not yet final, newest first, and print the pass summary as JSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(cmd, engineOpts, func(ctx context.Context, engine *app.Engine) error {
				if _, err := engine.Maintenance.Recover(ctx); err != nil {
					return err
				}
				return reportSummary(cmd, engine.Runner.RunForeground(ctx, nil))
			})
		},
	}
	addConfigFlag(cmd.Flags())
	return cmd
}

func newBackfillCmd(engineOpts []app.SyncAppOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Fetch past weeks down to the configured start date and exit",
		Long: `Recover interrupted periods, then fetch the weekly report of every past week that
is not yet final, newest first, until none is left or the process is interrupted.
Weeks that come back empty are retried on a later run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(cmd, engineOpts, func(ctx context.Context, engine *app.Engine) error {
				if _, err := engine.Maintenance.Recover(ctx); err != nil {
					return err
				}
				return reportSummary(cmd, engine.Runner.RunBackground(ctx))
			})
		},
	}
	addConfigFlag(cmd.Flags())
	return cmd
}

func newRepairCmd(engineOpts []app.SyncAppOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Clear weeks holding corrupted sale records",
		Long: `Scan the stored sale records for the known corruption pattern, delete the data of
every affected week and reset its registry entries so the next run fetches it again.
Prints the affected week identifiers as JSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(cmd, engineOpts, func(ctx context.Context, engine *app.Engine) error {
				weeks, err := engine.Maintenance.RepairCorruption(ctx)
				if err != nil {
					return err
				}
				if weeks == nil {
					weeks = []string{}
				}
				return printJSON(cmd, struct {
					Weeks []string `json:"weeks"`
				}{Weeks: weeks})
			})
		},
	}
	addConfigFlag(cmd.Flags())
	return cmd
}

// withEngine loads the configuration, builds the engine with engineOpts applied after the
// configuration and runs fn under a context cancelled by SIGINT or SIGTERM.
func withEngine(cmd *cobra.Command, engineOpts []app.SyncAppOptions, fn func(ctx context.Context, engine *app.Engine) error) error {
	v, err := newViper(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := append([]app.SyncAppOptions{app.WithConfig(cfg)}, engineOpts...)
	engine, err := app.NewEngine(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to build sync engine: %w", err)
	}
	defer func() {
		_ = engine.Close(context.WithoutCancel(ctx))
	}()

	return fn(ctx, engine)
}

// reportSummary prints summary and fails the command when a task failed.
func reportSummary(cmd *cobra.Command, summary coordinator.Summary) error {
	if err := printJSON(cmd, summary); err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d tasks failed", summary.Failed, summary.Tasks)
	}
	return nil
}
