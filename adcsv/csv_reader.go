package adcsv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVReader tokenizes comma-separated text whose first row holds the column names.
// Blank lines are skipped and short rows are padded with empty cells.
// A stray quote inside an unquoted cell is kept as a literal character.
type CSVReader struct{}

func (r *CSVReader) Read(input io.Reader) ([]Record, error) {
	// Drops a leading UTF-8 BOM so the first header matches the column table.
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	content, err := io.ReadAll(transform.NewReader(input, decoder))
	if err != nil {
		return nil, &ParseFailure{Err: err}
	}
	if parseErr := unterminatedQuote(content); parseErr != nil {
		return nil, &ParseFailure{Err: parseErr}
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, &ParseFailure{Err: err}
	}

	records := make([]Record, 0, 64)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseFailure{Err: err}
		}
		if isBlankRow(row) && len(row) <= 1 {
			continue
		}

		records = append(records, newRecord(len(records), headers, row))
	}

	return records, nil
}

// unterminatedQuote reports a quoted field that is still open at end of input.
// It follows the lazy quote rules of encoding/csv: a quote inside a quoted
// field only closes it when followed by a delimiter, a line break or EOF.
func unterminatedQuote(content []byte) error {
	line, col := 1, 0
	openLine, openCol := 0, 0
	fieldStart := true
	quoted := false

	for i := 0; i < len(content); i++ {
		c := content[i]
		col++

		switch {
		case quoted && c == '"':
			if i+1 < len(content) && content[i+1] == '"' {
				i++
				col++
				continue
			}
			if i+1 == len(content) || isFieldEnd(content[i+1]) {
				quoted = false
			}
		case quoted:
			if c == '\n' {
				line++
				col = 0
			}
		case fieldStart && c == '"':
			quoted = true
			openLine, openCol = line, col
			fieldStart = false
		case c == ',':
			fieldStart = true
		case c == '\n':
			fieldStart = true
			line++
			col = 0
		default:
			fieldStart = false
		}
	}

	if !quoted {
		return nil
	}
	return &csv.ParseError{StartLine: openLine, Line: line, Column: openCol, Err: csv.ErrQuote}
}

func isFieldEnd(c byte) bool {
	return c == ',' || c == '\n' || c == '\r'
}
