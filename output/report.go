package output

import (
	"strconv"
	"strings"

	"adlauncher/adcsv"
)

const (
	StatusValid   = "VALID"
	StatusInvalid = "INVALID"
)

var reportHeaders = []string{"Row", "Row Type", "Name", "Status", "Ad Set IDs", "Errors", "Warnings"}

// ReportTable renders one line per parsed row in input order.
func ReportTable(rows []adcsv.AdRow) Table {
	table := Table{
		Headers: reportHeaders,
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		status := StatusValid
		if !row.IsValid {
			status = StatusInvalid
		}
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(row.RowNumber()),
			string(row.RowType),
			row.DisplayName(),
			status,
			strings.Join(row.AdSetIDs, ", "),
			strings.Join(row.Errors, "; "),
			strings.Join(row.Warnings, "; "),
		})
	}
	return table
}

func WriteReport(path, format string, rows []adcsv.AdRow) error {
	return Write(path, format, ReportTable(rows))
}
