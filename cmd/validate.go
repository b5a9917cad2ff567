package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"adlauncher/adcsv"
	"adlauncher/config"
	"adlauncher/output"
)

const validateCellWidth = 60

var (
	validateInput        string
	validateFormat       string
	validateReport       string
	validateReportFormat string
	validateJSON         bool
	validateStrict       bool
)

var errInvalidRows = errors.New("file contains invalid rows")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Parse and validate a bulk ad file without launching anything",
	Long: `Parse a bulk ad CSV or Excel file and validate every row.

Each row is checked for primary text, headline, destination link, ad set IDs and, for
carousel rows, at least two cards. Rows without media only produce a warning.

The per-row result is printed as a table, or as the JSON document the HTTP API returns
when --json is set. --report writes the same per-row result to a CSV or Excel file.`,
	Example: `
  # Validate and print a per-row table
  adlauncher validate -i ads.csv

  # Emit the API response shape
  adlauncher validate -i ads.csv --json

  # Write an Excel report and fail when any row is invalid
  adlauncher validate -i ads.xlsx --report ./report.xlsx --strict
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		rows, err := parseInputFile(cfg, validateInput, validateFormat)
		if err != nil {
			return err
		}

		if validateJSON {
			if err := writeParseResponse(cmd.OutOrStdout(), rows); err != nil {
				return err
			}
		} else {
			if err := printValidation(cmd.OutOrStdout(), rows); err != nil {
				return err
			}
		}

		if validateReport != "" {
			if err := output.WriteReport(validateReport, validateReportFormat, rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Report written: %s\n", validateReport)
		}

		if validateStrict && adcsv.Summarize(rows).Validation().InvalidCount > 0 {
			return errInvalidRows
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "", "Bulk ad file (.csv, .xlsx, .xlsm)")
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "", "Input format: csv|excel (optional, inferred from extension)")
	validateCmd.Flags().StringVar(&validateReport, "report", "", "Write a per-row report to this .csv or .xlsx file")
	validateCmd.Flags().StringVar(&validateReportFormat, "report-format", "", "Report format: csv|excel (optional, inferred from --report extension)")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Print rows and validation summary as JSON")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Exit non-zero when any row is invalid")

	_ = validateCmd.MarkFlagRequired("input")
}

// parseInputFile runs the import pipeline with the configured size caps.
func parseInputFile(cfg *config.Config, path, format string) ([]adcsv.AdRow, error) {
	rows, err := adcsv.ParseFile(path, adcsv.Options{
		Format:   strings.TrimSpace(format),
		MaxBytes: cfg.Import.MaxFileBytes,
		MaxRows:  cfg.Import.MaxRows,
	})
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}

func writeParseResponse(w io.Writer, rows []adcsv.AdRow) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(adcsv.NewParseResponse(rows)); err != nil {
		return fmt.Errorf("encode parse response: %w", err)
	}
	return nil
}

func printValidation(w io.Writer, rows []adcsv.AdRow) error {
	if err := output.RenderText(w, output.ReportTable(rows), validateCellWidth); err != nil {
		return err
	}

	validation := adcsv.Summarize(rows).Validation()
	_, err := fmt.Fprintf(w, "\nRows: %d, Valid: %d, Invalid: %d, Errors: %d, Warnings: %d\n",
		len(rows),
		validation.ValidCount,
		validation.InvalidCount,
		validation.TotalErrors,
		validation.TotalWarnings,
	)
	return err
}
