package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"adlauncher/internal/timeutil"
	"adlauncher/output"
	"adlauncher/storage"
)

const historyCellWidth = 40

var (
	historyDBPath  string
	historyBatchID string
	historyOutput  string
	historyFormat  string
	historyBatches bool
	historySince   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or export the local launch history",
	Long: `Show or export launch outcomes recorded in the local SQLite history.

By default every recorded ad is listed; --batch restricts the list to one launch batch and
--batches lists the batches themselves with their launched/failed counts.

Without --output the result is printed as a table. With --output it is written to CSV or
Excel, selected via --format or inferred from the file extension.`,
	Example: `
  # Print all batches
  adlauncher history --batches

  # Print the ads of one batch
  adlauncher history --batch 1c9f0f6e-6a43-4f43-9f57-3c1e0cf0f7b4

  # Only launches since March 1st
  adlauncher history --since 2026-03-01

  # Export the full history to Excel
  adlauncher history -o ./launches.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(historyDBPath); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("database file not found: %s (run adlauncher launch first)", historyDBPath)
			}
			return fmt.Errorf("stat database file: %w", err)
		}

		store, err := storage.OpenSQLite(historyDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		table, count, err := historyTable(cmd, store)
		if err != nil {
			return err
		}

		path := strings.TrimSpace(historyOutput)
		if path == "" {
			if err := output.RenderText(cmd.OutOrStdout(), table, historyCellWidth); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nRows: %d\n", count)
			return nil
		}

		format := historyFormat
		if strings.TrimSpace(format) == "" {
			format, err = output.FormatForPath(path)
			if err != nil {
				return err
			}
		}
		if err := output.Write(path, format, table); err != nil {
			return err
		}
		fmt.Printf("Export completed. Rows: %d, Format: %s, File: %s\n", count, format, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyDBPath, "db", defaultDBPath, "Path to local SQLite database")
	historyCmd.Flags().StringVar(&historyBatchID, "batch", "", "Only show ads of this batch")
	historyCmd.Flags().BoolVar(&historyBatches, "batches", false, "List batches instead of ads")
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", "", "Export to this .csv or .xlsx file instead of printing")
	historyCmd.Flags().StringVar(&historySince, "since", "", "Only show entries created on or after this day, format YYYY-MM-DD")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "", "Export format: csv|excel (optional, inferred from --output extension)")
}

func historyTable(cmd *cobra.Command, store *storage.SQLiteStore) (output.Table, int, error) {
	since, err := timeutil.ParseDay(historySince, time.Local)
	if err != nil {
		return output.Table{}, 0, fmt.Errorf("invalid --since value: %w", err)
	}

	ctx := commandContext(cmd)
	if historyBatches {
		batches, err := store.ListBatches(ctx)
		if err != nil {
			return output.Table{}, 0, err
		}
		batches = batchesSince(batches, since)
		return output.BatchTable(batches), len(batches), nil
	}

	launches, err := store.ListLaunches(ctx, strings.TrimSpace(historyBatchID))
	if err != nil {
		return output.Table{}, 0, err
	}
	launches = launchesSince(launches, since)
	return output.LaunchTable(launches), len(launches), nil
}

func launchesSince(launches []storage.LaunchedAd, since time.Time) []storage.LaunchedAd {
	out := launches[:0:0]
	for _, launch := range launches {
		if timeutil.NotBefore(launch.LaunchedAt, since) {
			out = append(out, launch)
		}
	}
	return out
}

func batchesSince(batches []storage.Batch, since time.Time) []storage.Batch {
	out := batches[:0:0]
	for _, batch := range batches {
		if timeutil.NotBefore(batch.CreatedAt, since) {
			out = append(out, batch)
		}
	}
	return out
}
