package adcsv

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSummarize_PartitionsAndCounts(t *testing.T) {
	t.Parallel()

	rows := []AdRow{
		{RowIndex: 0, IsValid: true, Errors: []string{}, Warnings: []string{"w"}},
		{RowIndex: 1, IsValid: false, Errors: []string{"e1", "e2"}, Warnings: []string{"w"}},
		{RowIndex: 2, IsValid: true, Errors: []string{}, Warnings: []string{}},
		{RowIndex: 3, IsValid: false, Errors: []string{"e1"}, Warnings: []string{}},
	}

	report := Summarize(rows)
	if len(report.Valid) != 2 || len(report.Invalid) != 2 {
		t.Fatalf("unexpected partition sizes: valid=%d invalid=%d", len(report.Valid), len(report.Invalid))
	}
	if report.Valid[0].RowIndex != 0 || report.Valid[1].RowIndex != 2 {
		t.Fatalf("valid partition lost input order: %+v", report.Valid)
	}
	if report.Invalid[0].RowIndex != 1 || report.Invalid[1].RowIndex != 3 {
		t.Fatalf("invalid partition lost input order: %+v", report.Invalid)
	}
	if report.TotalErrors != 3 || report.TotalWarnings != 2 {
		t.Fatalf("unexpected totals: errors=%d warnings=%d", report.TotalErrors, report.TotalWarnings)
	}

	validation := report.Validation()
	if validation.ValidCount != 2 || validation.InvalidCount != 2 || validation.TotalErrors != 3 || validation.TotalWarnings != 2 {
		t.Fatalf("unexpected validation block: %+v", validation)
	}
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	report := Summarize(nil)
	if len(report.Valid) != 0 || len(report.Invalid) != 0 || report.TotalErrors != 0 || report.TotalWarnings != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestParseResponse_JSONShape(t *testing.T) {
	t.Parallel()

	rows, err := Parse(strings.NewReader("Link\n\n"), Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	payload, err := json.Marshal(NewParseResponse(rows))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"rows":[],"validation":{"validCount":0,"invalidCount":0,"totalErrors":0,"totalWarnings":0}}`
	if string(payload) != want {
		t.Fatalf("unexpected payload:\nwant %s\ngot  %s", want, payload)
	}

	row := ParseRow(Normalized{"link": "https://x.com"}, 0)
	encoded, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal row: %v", err)
	}
	for _, key := range []string{`"rowIndex":0`, `"rowType":"Single"`, `"videoUrls":[]`, `"carouselCards":[]`, `"isValid":false`, `"callToAction":"LEARN_MORE"`} {
		if !strings.Contains(string(encoded), key) {
			t.Fatalf("expected %s in %s", key, encoded)
		}
	}
}
