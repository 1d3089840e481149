// Package app provides the entry point for the wb-sync command line.
package app

import (
	"fmt"
	"log/slog"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/app"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/config"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/versions"
)

// NewRootCmd creates the root command with every subcommand attached.
// engineOpts are applied to the engine built by the sync, backfill and repair commands.
func NewRootCmd(engineOpts ...app.SyncAppOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "wb-sync",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "Wildberries report synchronization service",
		Long: `wb-sync mirrors the marketplace's detailed sales report into a local store.

Daily data for the current week is refreshed continuously and replaced by the
authoritative weekly report once it is published; past weeks are backfilled
down to the configured start date.`,
		Run: func(cmd *cobra.Command, _ []string) {
			// If no subcommand is provided, print help
			if err := cmd.Help(); err != nil {
				slog.Error("Error displaying help", "error", err)
			}
		},
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSyncCmd(engineOpts))
	rootCmd.AddCommand(newBackfillCmd(engineOpts))
	rootCmd.AddCommand(newRepairCmd(engineOpts))
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.GetVersionInfo()
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to get format flag: %w", err)
			}

			if format == "json" {
				return printJSON(cmd, info)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wb-sync %s (commit %s, built %s, %s, %s)\n",
				info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
			return err
		},
	}
	cmd.Flags().String("format", "", "Output format (json)")
	return cmd
}

// addConfigFlag registers --config on flags. The value may also come from WB_SYNC_CONFIG.
func addConfigFlag(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to configuration file (YAML format, required)")
}

// newViper binds the command's flags to a viper instance reading WB_SYNC_* environment variables.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	return v, nil
}

// loadConfig loads the configuration named by --config.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	path := v.GetString("config")
	if path == "" {
		return nil, fmt.Errorf("--config is required (or set %s_CONFIG)", config.EnvPrefix)
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Info("Loaded configuration", "path", path, "storage", cfg.Storage.GetType())
	return cfg, nil
}

// printJSON writes v as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format output as JSON: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
	return err
}
