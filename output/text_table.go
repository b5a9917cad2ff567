package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const cellEllipsis = "..."

// RenderText writes table as aligned plain-text columns. Cells wider than
// maxCellWidth are truncated; maxCellWidth <= 0 disables truncation.
func RenderText(w io.Writer, table Table, maxCellWidth int) error {
	rows := make([][]string, 0, len(table.Rows)+1)
	rows = append(rows, table.Headers)
	rows = append(rows, table.Rows...)

	colCount := len(table.Headers)
	for _, row := range table.Rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	cells := make([][]string, len(rows))
	widths := make([]int, colCount)
	for r, row := range rows {
		cells[r] = make([]string, colCount)
		for c := 0; c < colCount; c++ {
			content := ""
			if c < len(row) {
				content = strings.ReplaceAll(row[c], "\n", " ")
			}
			if maxCellWidth > 0 && runewidth.StringWidth(content) > maxCellWidth {
				content = runewidth.Truncate(content, maxCellWidth, cellEllipsis)
			}
			cells[r][c] = content
			if width := runewidth.StringWidth(content); width > widths[c] {
				widths[c] = width
			}
		}
	}

	for r, row := range cells {
		if err := writeTextLine(w, row, widths); err != nil {
			return err
		}
		if r == 0 {
			separator := make([]string, colCount)
			for c := range separator {
				separator[c] = strings.Repeat("-", widths[c])
			}
			if err := writeTextLine(w, separator, widths); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeTextLine(w io.Writer, row []string, widths []int) error {
	var sb strings.Builder
	for c, content := range row {
		if c > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(content)
		if c < len(row)-1 {
			if padding := widths[c] - runewidth.StringWidth(content); padding > 0 {
				sb.WriteString(strings.Repeat(" ", padding))
			}
		}
	}
	sb.WriteString("\n")
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("write table line: %w", err)
	}
	return nil
}
