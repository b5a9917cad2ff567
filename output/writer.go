package output

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Table is a header row plus data rows, written as-is by every Writer.
type Table struct {
	Headers []string
	Rows    [][]string
}

type Writer interface {
	Write(path string, table Table) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// FormatForPath derives the output format from the file extension.
func FormatForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv", nil
	case ".xlsx":
		return "excel", nil
	default:
		return "", fmt.Errorf("cannot detect output format from %q (use .csv or .xlsx, or pass --format)", path)
	}
}

// Write resolves the format (from format or, when empty, from path) and
// writes table to path.
func Write(path, format string, table Table) error {
	if strings.TrimSpace(format) == "" {
		detected, err := FormatForPath(path)
		if err != nil {
			return err
		}
		format = detected
	}

	writer, err := WriterForFormat(format)
	if err != nil {
		return err
	}
	return writer.Write(path, table)
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
