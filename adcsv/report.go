package adcsv

// Report partitions parsed rows and totals their findings.
type Report struct {
	Valid         []AdRow
	Invalid       []AdRow
	TotalErrors   int
	TotalWarnings int
}

// Validation is the aggregate block returned to API callers.
type Validation struct {
	ValidCount    int `json:"validCount"`
	InvalidCount  int `json:"invalidCount"`
	TotalErrors   int `json:"totalErrors"`
	TotalWarnings int `json:"totalWarnings"`
}

// ParseResponse is the payload of the parse endpoint.
type ParseResponse struct {
	Rows       []AdRow    `json:"rows"`
	Validation Validation `json:"validation"`
}

// Summarize splits rows into valid and invalid ones, keeping input order in both,
// and sums error and warning counts over all rows.
func Summarize(rows []AdRow) Report {
	report := Report{
		Valid:   make([]AdRow, 0, len(rows)),
		Invalid: make([]AdRow, 0),
	}
	for _, row := range rows {
		if row.IsValid {
			report.Valid = append(report.Valid, row)
		} else {
			report.Invalid = append(report.Invalid, row)
		}
		report.TotalErrors += len(row.Errors)
		report.TotalWarnings += len(row.Warnings)
	}
	return report
}

func (r Report) Validation() Validation {
	return Validation{
		ValidCount:    len(r.Valid),
		InvalidCount:  len(r.Invalid),
		TotalErrors:   r.TotalErrors,
		TotalWarnings: r.TotalWarnings,
	}
}

func NewParseResponse(rows []AdRow) ParseResponse {
	if rows == nil {
		rows = []AdRow{}
	}
	return ParseResponse{
		Rows:       rows,
		Validation: Summarize(rows).Validation(),
	}
}
