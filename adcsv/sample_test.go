package adcsv

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSampleCSV_ParsesAsValidSingleAd(t *testing.T) {
	t.Parallel()

	sample, err := SampleCSV()
	if err != nil {
		t.Fatalf("sample csv: %v", err)
	}
	if !strings.HasPrefix(sample, "Row Type,Custom Name,Primary Text Variation 1,") {
		t.Fatalf("unexpected header: %s", sample)
	}

	rows, err := Parse(strings.NewReader(sample), Options{})
	if err != nil {
		t.Fatalf("parse sample: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 sample row, got %d", len(rows))
	}
	row := rows[0]
	if !row.IsValid || len(row.Warnings) != 0 {
		t.Fatalf("sample row should be clean, errors=%v warnings=%v", row.Errors, row.Warnings)
	}
	if diff := cmp.Diff([]string{"Main Headline", "Headline Variation 2"}, row.HeadlineVariations); diff != "" {
		t.Fatalf("unexpected headlines (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"This is the primary ad text...", "Alternative primary text..."}, row.PrimaryTextVariations); diff != "" {
		t.Fatalf("unexpected primary texts (-want +got):\n%s", diff)
	}
	if row.LaunchPaused {
		t.Fatalf("sample row is not paused")
	}
}
