package adcsv

import (
	"fmt"
	"io"
)

// CopyRow is one reusable set of ad copy read from a copy sheet.
type CopyRow struct {
	RowIndex      int      `json:"rowIndex"`
	Name          string   `json:"name"`
	PrimaryTexts  []string `json:"primaryTexts"`
	Headlines     []string `json:"headlines"`
	Description   string   `json:"description,omitempty"`
	Link          string   `json:"link"`
	DisplayLink   string   `json:"displayLink,omitempty"`
	UTMParameters string   `json:"utmParameters,omitempty"`
	CallToAction  string   `json:"callToAction"`
}

// CopyImport splits a copy sheet into rows that can be stored and the
// indexes of rows missing a required cell.
type CopyImport struct {
	Rows    []CopyRow `json:"rows"`
	Skipped []int     `json:"skipped"`
}

// ParseCopy reads a copy sheet. Name, Primary Text 1, Headline 1 and Link
// are required; a row missing any of them is skipped, not fatal.
func ParseCopy(input io.Reader, opts Options) (CopyImport, error) {
	records, err := readRecords(input, opts)
	if err != nil {
		return CopyImport{}, err
	}

	result := CopyImport{Rows: make([]CopyRow, 0, len(records)), Skipped: []int{}}
	for index, record := range records {
		row, ok := parseCopyRecord(record.Values, index)
		if !ok {
			result.Skipped = append(result.Skipped, index)
			continue
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

func parseCopyRecord(values map[string]string, index int) (CopyRow, bool) {
	cell := func(header string) string {
		return trim(values[header])
	}

	row := CopyRow{
		RowIndex:      index,
		Name:          cell("Name"),
		PrimaryTexts:  copyVariations(cell, "Primary Text %d"),
		Headlines:     copyVariations(cell, "Headline %d"),
		Description:   cell("Description"),
		Link:          cell("Link"),
		DisplayLink:   cell("Display Link"),
		UTMParameters: cell("UTM Parameters"),
		CallToAction:  cell("CTA"),
	}
	if row.CallToAction == "" {
		row.CallToAction = DefaultCallToAction
	}

	if row.Name == "" || cell("Primary Text 1") == "" || cell("Headline 1") == "" || row.Link == "" {
		return CopyRow{}, false
	}
	return row, true
}

func copyVariations(cell func(string) string, pattern string) []string {
	out := make([]string, 0, MaxVariations)
	for slot := 1; slot <= MaxVariations; slot++ {
		if value := cell(fmt.Sprintf(pattern, slot)); value != "" {
			out = append(out, value)
		}
	}
	return out
}

// CopySampleCSV is a copy sheet with every recognised column.
func CopySampleCSV() string {
	return "Name,Primary Text 1,Primary Text 2,Headline 1,Headline 2,Description,Link,Display Link,UTM Parameters,CTA\n" +
		"Spring Sale,Fresh looks for spring,Up to 40% off,Spring Sale,Shop now,Limited time,https://example.com/spring,example.com,utm_source=facebook,SHOP_NOW\n"
}
