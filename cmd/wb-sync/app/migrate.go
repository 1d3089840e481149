package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/NikolayVerchenko/wb-analytics-sub001/database"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/app/storage"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/config"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the sync store schema",
		Long: `Apply or revert schema migrations of the configured store.
The serve and sync commands apply pending migrations on startup;
these commands exist for operators who manage the schema explicitly.`,
	}

	cmd.PersistentFlags().BoolP("yes", "y", false, "Skip confirmation prompt")
	cmd.PersistentFlags().UintP("num-steps", "n", 0, "Number of migration steps to apply (0 = all)")
	addConfigFlag(cmd.PersistentFlags())

	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateDownCmd())
	return cmd
}

// openMigrator opens the configured store without migrating it and returns a migrator
// bound to it, a description of the target, and a cleanup function.
func openMigrator(ctx context.Context, cfg *config.Config) (database.Migrator, string, func(), error) {
	factory, err := storage.NewStorageFactory(ctx, cfg, storage.WithoutMigrations())
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to open store: %w", err)
	}

	conn := factory.Connection()
	m, err := database.NewFromConnectionString(conn.Dialect, conn.MigrationURL())
	if err != nil {
		factory.Cleanup()
		return nil, "", nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	cleanup := func() {
		srcErr, dbErr := m.Close()
		if err := errors.Join(srcErr, dbErr); err != nil {
			slog.Warn("Failed to close migrator", "error", err)
		}
		factory.Cleanup()
	}
	return m, describeTarget(cfg), cleanup, nil
}

func describeTarget(cfg *config.Config) string {
	if cfg.Storage.GetType() == config.StorageTypeDatabase && cfg.Storage.Database != nil {
		d := cfg.Storage.Database
		return fmt.Sprintf("postgres %s@%s:%d/%s", d.User, d.Host, d.Port, d.Database)
	}
	return "sqlite " + cfg.Storage.GetFilePath()
}

// migrateFlags reads the flags shared by the migrate subcommands.
func migrateFlags(v *viper.Viper) (yes bool, numSteps uint) {
	return v.GetBool("yes"), v.GetUint("num-steps")
}

// confirm asks a yes/no question on the command's stdin.
// A non-terminal stdin file never confirms; use --yes in scripts.
func confirm(cmd *cobra.Command, prompt string) bool {
	if f, ok := cmd.InOrStdin().(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		slog.Warn("Standard input is not a terminal; pass --yes to confirm")
		return false
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// displayMigrationVersion logs the schema version after a migration.
func displayMigrationVersion(m database.Migrator) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		slog.Info("No migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		slog.Warn("Database is in a dirty state", "version", version)
		return nil
	}
	slog.Info("Current migration version", "version", version)
	return nil
}
