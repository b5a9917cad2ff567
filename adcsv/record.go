package adcsv

import (
	"strings"
	"unicode"
)

// Record is one raw data row keyed by its header text, in file order.
type Record struct {
	Index  int
	Values map[string]string
}

func newRecord(index int, headers, row []string) Record {
	values := make(map[string]string, len(headers))
	for i, header := range headers {
		if i < len(row) {
			values[header] = row[i]
		} else {
			values[header] = ""
		}
	}
	return Record{Index: index, Values: values}
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// trim strips surrounding whitespace including a stray byte order mark.
func trim(value string) string {
	return strings.TrimFunc(value, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}
