package adcsv

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExcelReader reads the first sheet of a workbook using the same header rules as CSVReader.
type ExcelReader struct{}

func (r *ExcelReader) Read(input io.Reader) ([]Record, error) {
	file, err := excelize.OpenReader(input)
	if err != nil {
		return nil, &ParseFailure{Err: fmt.Errorf("open workbook: %w", err)}
	}
	defer file.Close()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, &ParseFailure{Err: fmt.Errorf("workbook has no sheets")}
	}

	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, &ParseFailure{Err: fmt.Errorf("read rows from sheet %s: %w", sheetName, err)}
	}
	if len(rows) == 0 {
		return []Record{}, nil
	}

	headers := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		records = append(records, newRecord(len(records), headers, row))
	}

	return records, nil
}
