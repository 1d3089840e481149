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

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE:  runMigrateUp,
	}
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
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

	if !yes && !confirm(cmd, fmt.Sprintf("Apply migrations to %s?", target)) {
		slog.Info("Migration cancelled by user")
		return nil
	}

	slog.Info("Applying migrations", "target", target, "steps", numSteps)
	if err := executeMigrateUp(m, numSteps); err != nil {
		return err
	}
	return displayMigrationVersion(m)
}

func executeMigrateUp(m database.Migrator, numSteps uint) error {
	var err error
	if numSteps == 0 {
		err = m.Up()
	} else {
		if numSteps > math.MaxInt {
			return fmt.Errorf("num-steps %d is too large", numSteps)
		}
		err = m.Steps(int(numSteps))
	}

	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("No migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	slog.Info("Migrations applied successfully")
	return nil
}
