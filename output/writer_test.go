package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"adlauncher/adcsv"
	"adlauncher/storage"
)

func TestWriteReport_CSV(t *testing.T) {
	t.Parallel()

	rows := []adcsv.AdRow{
		{RowIndex: 0, RowType: adcsv.RowTypeSingle, CustomName: "Spring", AdSetIDs: []string{"123", "456"}, IsValid: true, Warnings: []string{"No media URLs provided"}},
		{RowIndex: 1, RowType: adcsv.RowTypeCarousel, HeadlineVariations: []string{"Deals"}, IsValid: false, Errors: []string{"Link is required", "At least one Ad Set ID is required"}},
	}

	path := filepath.Join(t.TempDir(), "report.csv")
	if err := WriteReport(path, "", rows); err != nil {
		t.Fatalf("write report: %v", err)
	}

	got := readCSV(t, path)
	want := [][]string{
		{"Row", "Row Type", "Name", "Status", "Ad Set IDs", "Errors", "Warnings"},
		{"1", "Single", "Spring", "VALID", "123, 456", "", "No media URLs provided"},
		{"2", "Carousel", "Deals", "INVALID", "", "Link is required; At least one Ad Set ID is required", ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteLaunches_Excel(t *testing.T) {
	t.Parallel()

	launches := []storage.LaunchedAd{{
		ID:           7,
		BatchID:      "b-1",
		RowIndex:     2,
		AdSetID:      "123",
		Status:       storage.StatusLaunched,
		FBAdID:       "ad-1",
		LaunchPaused: true,
		LaunchedAt:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}}

	path := filepath.Join(t.TempDir(), "history.xlsx")
	if err := WriteLaunches(path, "", launches); err != nil {
		t.Fatalf("write launches: %v", err)
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer file.Close()

	rows, err := file.GetRows(file.GetSheetName(0))
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus 1 row, got %d", len(rows))
	}
	if rows[1][0] != "7" || rows[1][2] != "3" || rows[1][4] != "LAUNCHED" || rows[1][12] != "true" {
		t.Fatalf("unexpected launch row: %v", rows[1])
	}
}

func TestWriteBatches_CSV(t *testing.T) {
	t.Parallel()

	batches := []storage.Batch{{ID: "b-1", SourceFile: "a.csv", CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), RowsTotal: 3, RowsValid: 2, Launched: 2, Failed: 1}}
	path := filepath.Join(t.TempDir(), "batches.csv")
	if err := WriteBatches(path, "csv", batches); err != nil {
		t.Fatalf("write batches: %v", err)
	}

	got := readCSV(t, path)
	if diff := cmp.Diff([]string{"b-1", "a.csv", "2026-03-01T00:00:00Z", "3", "2", "2", "1"}, got[1]); diff != "" {
		t.Fatalf("batch row mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_RejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	if err := Write(filepath.Join(t.TempDir(), "out.json"), "", Table{}); err == nil {
		t.Fatalf("expected error for undetectable format")
	}
	if _, err := WriterForFormat("pdf"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return records
}
