package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"adlauncher/storage"
)

var (
	deleteDBPath   string
	deleteBatchID  string
	deleteLaunchID int64
)

var (
	deletePromptInput  io.Reader = os.Stdin
	deletePromptOutput io.Writer = os.Stdout
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete launch history (one batch or the whole SQLite file)",
	Long: `Destructive history cleanup command.

Without --batch or --launch the complete SQLite database file is deleted. With --batch
only that launch batch and its recorded ads are removed; --launch removes one recorded ad. Ads already created on Facebook are not
touched. Before deletion, an interactive security prompt requires typing exactly "Y".`,
	Example: `
  # Delete the complete SQLite file (requires interactive confirmation)
  adlauncher delete --db ./adlauncher.db

  # Delete a single batch from the history
  adlauncher delete --batch 1c9f0f6e-6a43-4f43-9f57-3c1e0cf0f7b4

  # Delete one recorded ad from the history
  adlauncher delete --launch 42
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target := deleteDBPath
		batchID := strings.TrimSpace(deleteBatchID)
		switch {
		case batchID != "" && deleteLaunchID > 0:
			return fmt.Errorf("--batch and --launch cannot be combined")
		case batchID != "":
			target = fmt.Sprintf("batch %s in %s", batchID, deleteDBPath)
		case deleteLaunchID > 0:
			target = fmt.Sprintf("launch %d in %s", deleteLaunchID, deleteDBPath)
		}

		confirmed, err := confirmDeletePrompt(deletePromptInput, deletePromptOutput, target)
		if err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("delete aborted: confirmation was not 'Y'")
		}

		if batchID != "" {
			if err := removeBatch(cmd, deleteDBPath, batchID); err != nil {
				return err
			}
			fmt.Printf("Deleted batch: %s\n", batchID)
			return nil
		}
		if deleteLaunchID > 0 {
			removed, err := removeLaunch(cmd, deleteDBPath, deleteLaunchID)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted launch %d (row %d, ad set %s, status %s)\n", removed.ID, removed.RowIndex+1, removed.AdSetID, removed.Status)
			return nil
		}

		if err := removeDatabaseFile(deleteDBPath); err != nil {
			return err
		}
		fmt.Printf("Deleted database file: %s\n", deleteDBPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().StringVar(&deleteDBPath, "db", defaultDBPath, "Path to local SQLite database")
	deleteCmd.Flags().StringVar(&deleteBatchID, "batch", "", "Only delete this launch batch")
	deleteCmd.Flags().Int64Var(&deleteLaunchID, "launch", 0, "Only delete this recorded launch")
}

func confirmDeletePrompt(input io.Reader, output io.Writer, target string) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("delete confirmation input is not available")
	}

	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprintf(output, "Delete %q? Type Y to confirm: ", target); err != nil {
		return false, fmt.Errorf("write delete confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return strings.TrimSpace(line) == "Y", nil
		}
		return false, fmt.Errorf("read delete confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}

func removeBatch(cmd *cobra.Command, dbPath, batchID string) error {
	store, err := openExistingStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.DeleteBatch(commandContext(cmd), batchID)
}

// removeLaunch deletes one recorded launch and returns it as it was stored.
func removeLaunch(cmd *cobra.Command, dbPath string, id int64) (storage.LaunchedAd, error) {
	store, err := openExistingStore(dbPath)
	if err != nil {
		return storage.LaunchedAd{}, err
	}
	defer store.Close()

	ctx := commandContext(cmd)
	launch, err := store.GetLaunchByID(ctx, id)
	if err != nil {
		return storage.LaunchedAd{}, err
	}
	if err := store.DeleteLaunch(ctx, id); err != nil {
		return storage.LaunchedAd{}, err
	}
	return launch, nil
}

func openExistingStore(dbPath string) (*storage.SQLiteStore, error) {
	if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("database file not found: %s", dbPath)
		}
		return nil, fmt.Errorf("stat database file: %w", err)
	}
	return storage.OpenSQLite(dbPath)
}

func removeDatabaseFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("database file not found: %s", path)
		}
		return fmt.Errorf("stat database file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("database path is a directory: %s", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete database file: %w", err)
	}
	return nil
}
