package app

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/NikolayVerchenko/wb-analytics-sub001/database"
)

func newMigrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Revert migrations",
		Long: `Revert migrations of the configured store. Without --num-steps every migration is
reverted and all synchronized data is lost.`,
		RunE: runMigrateDown,
	}
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	v, err := newViper(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	yes, numSteps := migrateFlags(v)

	m, target, cleanup, err := openMigrator(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if !yes && !confirmMigrateDown(cmd, target, numSteps) {
		slog.Info("Migration cancelled by user")
		return nil
	}

	slog.Info("Reverting migrations", "target", target, "steps", numSteps)
	if err := executeMigrateDown(m, numSteps); err != nil {
		return err
	}
	return displayMigrationVersion(m)
}

func confirmMigrateDown(cmd *cobra.Command, target string, numSteps uint) bool {
	out := cmd.OutOrStdout()
	if numSteps == 0 {
		_, _ = fmt.Fprintf(out, "WARNING: this reverts ALL migrations of %s and deletes every synchronized record.\n", target)
	} else {
		_, _ = fmt.Fprintf(out, "WARNING: this reverts %d migration(s) of %s and may delete data.\n", numSteps, target)
	}
	return confirm(cmd, "Continue?")
}

func executeMigrateDown(m database.Migrator, numSteps uint) error {
	var err error
	if numSteps == 0 {
		err = m.Down()
	} else {
		if numSteps > math.MaxInt {
			return fmt.Errorf("num-steps %d is too large", numSteps)
		}
		err = m.Steps(-1 * int(numSteps))
	}

	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("No migrations to revert")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	slog.Info("Migrations reverted successfully")
	return nil
}
