package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"adlauncher/adcsv"
)

var templateOutput string

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write the bulk ad CSV template",
	Long: `Write the bulk ad CSV template: the full header row and one example single-image row.

Without --output the template is printed to stdout.`,
	Example: `
  # Print template to stdout
  adlauncher template

  # Write template to a file
  adlauncher template -o ./ad-launch-template.csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := adcsv.SampleCSV()
		if err != nil {
			return err
		}

		path := strings.TrimSpace(templateOutput)
		if path == "" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), content)
			return err
		}

		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write template file: %w", err)
		}
		fmt.Printf("Template written: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)

	templateCmd.Flags().StringVarP(&templateOutput, "output", "o", "", "Output file (default: stdout)")
}
