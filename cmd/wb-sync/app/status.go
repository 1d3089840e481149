package app

import (
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/app/storage"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/service"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/status"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "List period registry entries",
		Long: `List the sync state of registered periods, newest first.
The store is opened without the process lock, so this can run next to serve.`,
		RunE: runStatus,
	}
	cmd.Flags().String("kind", "", "Only show entries of this kind (daily, weekly)")
	cmd.Flags().String("status", "", "Only show entries in this status (pending, waiting, success, failed)")
	cmd.Flags().String("from", "", "Lowest period identifier to show (requires --kind)")
	cmd.Flags().String("to", "", "Highest period identifier to show (requires --kind)")
	cmd.Flags().String("format", "table", "Output format (table, json)")
	addConfigFlag(cmd.Flags())
	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	v, err := newViper(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	factory, err := storage.NewStorageFactory(ctx, cfg, storage.WithoutLock())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer factory.Cleanup()

	registry, err := factory.CreateRegistry(ctx)
	if err != nil {
		return err
	}
	svc, err := factory.CreateSyncService(ctx, registry, nil)
	if err != nil {
		return err
	}

	var opts []service.Option
	if kind := v.GetString("kind"); kind != "" {
		opts = append(opts, service.WithKind(kind))
	}
	if st := v.GetString("status"); st != "" {
		opts = append(opts, service.WithStatus(st))
	}
	if from, to := v.GetString("from"), v.GetString("to"); from != "" || to != "" {
		opts = append(opts, service.WithRange(from, to))
	}
	entries, err := svc.ListPeriods(ctx, opts...)
	if err != nil {
		return err
	}

	switch format := v.GetString("format"); format {
	case "json":
		if entries == nil {
			entries = []*status.Entry{}
		}
		return printJSON(cmd, entries)
	case "table", "":
		return printEntries(cmd, entries)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func printEntries(cmd *cobra.Command, entries []*status.Entry) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("PERIOD", "KIND", "STATUS", "FINAL", "LAST ATTEMPT", "NEXT RETRY", "ERROR")
	for _, e := range entries {
		if err := table.Append([]string{
			e.PeriodID,
			string(e.Kind),
			e.Status.String(),
			fmt.Sprintf("%t", e.IsFinal),
			formatTime(e.LastAttemptAt),
			formatTime(e.NextRetryAt),
			e.ErrorMessage,
		}); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}
	}
	return table.Render()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
