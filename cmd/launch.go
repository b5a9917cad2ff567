package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"adlauncher/adcsv"
	"adlauncher/config"
	"adlauncher/facebook"
	"adlauncher/launcher"
	"adlauncher/storage"
)

var (
	launchInput        string
	launchFormat       string
	launchDBPath       string
	launchDryRun       bool
	launchConcurrency  int
	launchSkipExisting bool
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Create Facebook ads for every valid row of a bulk ad file",
	Long: `Parse a bulk ad file and create one creative and one ad per valid row and ad set.

Invalid rows are skipped and reported. Every outcome (launched, failed or dry run) is
recorded in the local SQLite history under a new batch ID.

Use --dry-run to plan and record the batch without calling the Graph API.`,
	Example: `
  # Preview what would be launched
  adlauncher launch -i ads.csv --dry-run

  # Launch with 8 parallel workers
  adlauncher launch -i ads.csv --concurrency 8

  # Re-run a partially launched file without duplicating ads
  adlauncher launch -i ads.csv --skip-existing
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		var client facebook.Client
		if !launchDryRun {
			fbClient, err := newFacebookClient(cfg)
			if err != nil {
				return err
			}
			client = fbClient
		}

		rows, err := parseInputFile(cfg, launchInput, launchFormat)
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		store, err := storage.OpenSQLite(launchDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := commandContext(cmd)
		validation := adcsv.Summarize(rows).Validation()
		batch, err := store.CreateBatch(ctx, storage.Batch{
			SourceFile: filepath.Base(launchInput),
			RowsTotal:  len(rows),
			RowsValid:  validation.ValidCount,
		})
		if err != nil {
			return err
		}

		concurrency := launchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Launch.Concurrency
		}

		service := launcher.NewService(client, store, launchDefaults(cfg), logger)
		summary, err := service.Launch(ctx, batch.ID, rows, launcher.Options{
			Concurrency:  concurrency,
			DryRun:       launchDryRun,
			SkipExisting: launchSkipExisting,
		})
		if err != nil {
			return err
		}

		printLaunchSummary(cmd.OutOrStdout(), batch.ID, launchDryRun, summary)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(launchCmd)

	launchCmd.Flags().StringVarP(&launchInput, "input", "i", "", "Bulk ad file (.csv, .xlsx, .xlsm)")
	launchCmd.Flags().StringVarP(&launchFormat, "format", "f", "", "Input format: csv|excel (optional, inferred from extension)")
	launchCmd.Flags().StringVar(&launchDBPath, "db", defaultDBPath, "Path to local SQLite database")
	launchCmd.Flags().BoolVar(&launchDryRun, "dry-run", false, "Plan and record the batch without calling the Graph API")
	launchCmd.Flags().IntVar(&launchConcurrency, "concurrency", 0, "Parallel launches (default: launch.concurrency from config)")

	launchCmd.Flags().BoolVar(&launchSkipExisting, "skip-existing", false, "Skip rows whose ad name already exists in the target ad set")

	_ = launchCmd.MarkFlagRequired("input")
}

func printLaunchSummary(w io.Writer, batchID string, dryRun bool, summary launcher.Summary) {
	for _, result := range summary.Results {
		if result.Success {
			fmt.Fprintf(w, "OK   row %d ad set %s: %s (ad %s)\n", result.RowIndex+1, result.AdSetID, result.Name, result.AdID)
			continue
		}
		fmt.Fprintf(w, "FAIL row %d ad set %s: %s: %s\n", result.RowIndex+1, result.AdSetID, result.Name, result.Error)
	}

	mode := "launch"
	if dryRun {
		mode = "dry run"
	}
	fmt.Fprintf(w, "Batch %s (%s). Jobs: %d, Succeeded: %d, Failed: %d, Skipped rows: %d, Existing ads: %d\n",
		batchID,
		mode,
		summary.Total,
		summary.Succeeded,
		summary.Failed,
		summary.Skipped,
		summary.Duplicates,
	)
}
