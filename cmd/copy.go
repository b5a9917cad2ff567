package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"adlauncher/adcsv"
	"adlauncher/config"
	"adlauncher/output"
	"adlauncher/storage"
)

var (
	copyDBPath  string
	copyAccount string
	copyFormat  string
)

var copyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Manage reusable ad copy templates",
	Long: `Import, list and delete reusable ad copy stored per ad account in the local SQLite database.

A copy sheet has the columns Name, Primary Text 1-5, Headline 1-5, Description, Link,
Display Link, UTM Parameters and CTA. Name, Primary Text 1, Headline 1 and Link are required.`,
}

var copyImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import copy templates from a CSV or Excel sheet",
	Example: `
  # Import into the configured ad account
  adlauncher copy import ./copy.csv

  # Import into another account
  adlauncher copy import ./copy.xlsx --account 1234
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		account, err := copyAccountID(copyAccount, cfg)
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(copyDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		imported, failed, err := importCopyFile(commandContext(cmd), store, args[0], account, adcsv.Options{
			Format:   copyFormat,
			MaxBytes: cfg.Import.MaxFileBytes,
			MaxRows:  cfg.Import.MaxRows,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Copy import completed. Imported: %d, Failed: %d, Account: %s\n", imported, failed, account)
		return nil
	},
}

var copyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List copy templates, most recently updated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openExistingStore(copyDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		templates, err := store.ListCopyTemplates(commandContext(cmd), strings.TrimPrefix(strings.TrimSpace(copyAccount), "act_"))
		if err != nil {
			return err
		}
		if err := output.RenderText(cmd.OutOrStdout(), copyTable(templates), historyCellWidth); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nTemplates: %d\n", len(templates))
		return nil
	},
}

var copyDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete copy templates by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openExistingStore(copyDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		for _, arg := range args {
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid copy template id %q", arg)
			}
			if err := store.DeleteCopyTemplate(commandContext(cmd), id); err != nil {
				return fmt.Errorf("delete copy template %d: %w", id, err)
			}
			fmt.Printf("Deleted copy template %d\n", id)
		}
		return nil
	},
}

var copyTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print an example copy sheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprint(cmd.OutOrStdout(), adcsv.CopySampleCSV())
		return err
	},
}

func init() {
	rootCmd.AddCommand(copyCmd)
	copyCmd.AddCommand(copyImportCmd)
	copyCmd.AddCommand(copyListCmd)
	copyCmd.AddCommand(copyDeleteCmd)
	copyCmd.AddCommand(copyTemplateCmd)

	copyCmd.PersistentFlags().StringVar(&copyDBPath, "db", defaultDBPath, "Path to local SQLite database")
	copyCmd.PersistentFlags().StringVar(&copyAccount, "account", "", "Ad account id (default: facebook.ad_account_id)")
	copyImportCmd.Flags().StringVarP(&copyFormat, "format", "f", "", "Input format: csv|excel (optional, inferred from extension)")
}

func copyAccountID(flagValue string, cfg *config.Config) (string, error) {
	account := strings.TrimPrefix(strings.TrimSpace(flagValue), "act_")
	if account == "" && cfg != nil {
		account = strings.TrimPrefix(strings.TrimSpace(cfg.Facebook.AdAccountID), "act_")
	}
	if account == "" {
		return "", fmt.Errorf("ad account id is required (use --account or set facebook.ad_account_id)")
	}
	return account, nil
}

// importCopyFile stores every complete row of the sheet at path. Rows missing
// a required cell count as failed.
func importCopyFile(ctx context.Context, store *storage.SQLiteStore, path, account string, opts adcsv.Options) (int, int, error) {
	if opts.Format == "" {
		format, err := adcsv.FormatForPath(path)
		if err != nil {
			return 0, 0, err
		}
		opts.Format = format
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open copy file %s: %w", path, err)
	}
	defer file.Close()

	parsed, err := adcsv.ParseCopy(file, opts)
	if err != nil {
		return 0, 0, err
	}

	templates := make([]storage.CopyTemplate, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		templates = append(templates, storage.CopyTemplateFromRow(account, row))
	}
	stored, err := store.ImportCopyTemplates(ctx, templates)
	if err != nil {
		return 0, 0, err
	}
	return len(stored), len(parsed.Skipped), nil
}

func copyTable(templates []storage.CopyTemplate) output.Table {
	table := output.Table{
		Headers: []string{"ID", "Account", "Name", "Primary Text", "Headline", "Link", "CTA", "Updated"},
		Rows:    make([][]string, 0, len(templates)),
	}
	for _, template := range templates {
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(template.ID, 10),
			template.AdAccountID,
			template.Name,
			firstText(template.PrimaryTexts),
			firstText(template.Headlines),
			template.Link,
			template.CallToAction,
			template.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return table
}

func firstText(values []string) string {
	if len(values) == 0 {
		return ""
	}
	if len(values) == 1 {
		return values[0]
	}
	return fmt.Sprintf("%s (+%d)", values[0], len(values)-1)
}
