package adcsv

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Options bounds the input accepted by Parse. Zero values disable a limit.
type Options struct {
	Format   string
	MaxBytes int64
	MaxRows  int
}

// Parse reads a whole header-driven file and returns one AdRow per data row, in order.
// A tokenizer failure returns a *ParseFailure and no rows; oversized input returns a
// *LimitError. Row-level problems are reported inside each AdRow instead.
func Parse(input io.Reader, opts Options) ([]AdRow, error) {
	records, err := readRecords(input, opts)
	if err != nil {
		return nil, err
	}
	return ParseRecords(records), nil
}

// readRecords tokenizes input with the reader for opts.Format and applies the limits.
func readRecords(input io.Reader, opts Options) ([]Record, error) {
	format := opts.Format
	if format == "" {
		format = "csv"
	}
	reader, err := ReaderForFormat(format)
	if err != nil {
		return nil, err
	}

	content, err := readLimited(input, opts.MaxBytes)
	if err != nil {
		return nil, err
	}

	records, err := reader.Read(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	if opts.MaxRows > 0 && len(records) > opts.MaxRows {
		return nil, &LimitError{Limit: "rows", Max: int64(opts.MaxRows), Actual: int64(len(records))}
	}
	return records, nil
}

// ParseFile opens path and parses it, inferring the format from the extension
// unless opts.Format is set.
func ParseFile(path string, opts Options) ([]AdRow, error) {
	if opts.Format == "" {
		format, err := FormatForPath(path)
		if err != nil {
			return nil, err
		}
		opts.Format = format
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file %s: %w", path, err)
	}
	defer file.Close()

	return Parse(file, opts)
}

// ParseRecords normalizes and parses already tokenized records.
// Each row's index is its position in records.
func ParseRecords(records []Record) []AdRow {
	rows := make([]AdRow, 0, len(records))
	for index, record := range records {
		rows = append(rows, ParseRow(Normalize(record.Values), index))
	}
	return rows
}

func readLimited(input io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		content, err := io.ReadAll(input)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		return content, nil
	}

	content, err := io.ReadAll(io.LimitReader(input, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if int64(len(content)) > maxBytes {
		return nil, &LimitError{Limit: "bytes", Max: maxBytes}
	}
	return content, nil
}
