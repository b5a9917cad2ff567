package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "adlauncher_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_CreateBatchAssignsUUID(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	batch, err := store.CreateBatch(context.Background(), Batch{SourceFile: "spring.csv", RowsTotal: 3, RowsValid: 2})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if _, err := uuid.Parse(batch.ID); err != nil {
		t.Fatalf("expected uuid batch id, got %q: %v", batch.ID, err)
	}
	if batch.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}
}

func TestSQLiteStore_RecordAndListLaunches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)
	batch, err := store.CreateBatch(ctx, Batch{SourceFile: "spring.csv", RowsTotal: 2, RowsValid: 2})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	other, err := store.CreateBatch(ctx, Batch{SourceFile: "other.csv", RowsTotal: 1, RowsValid: 1})
	if err != nil {
		t.Fatalf("create other batch: %v", err)
	}

	launchedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	launches := []LaunchedAd{
		{BatchID: batch.ID, RowIndex: 1, AdSetID: "456", Status: StatusFailed, ErrorMessage: "Invalid parameter", LaunchedAt: launchedAt},
		{BatchID: batch.ID, RowIndex: 0, AdSetID: "123", FBAdID: "ad-1", FBCreativeID: "cr-1", PrimaryText: "Hi", Headline: "Save", Link: "https://x.com", CallToAction: "SHOP_NOW", LaunchPaused: true, Status: StatusLaunched, LaunchedAt: launchedAt},
		{BatchID: other.ID, RowIndex: 0, AdSetID: "789", IsCarousel: true, Status: StatusLaunched, LaunchedAt: launchedAt},
	}
	for _, launch := range launches {
		if _, err := store.RecordLaunch(ctx, launch); err != nil {
			t.Fatalf("record launch: %v", err)
		}
	}

	listed, err := store.ListLaunches(ctx, batch.ID)
	if err != nil {
		t.Fatalf("list launches: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 launches in batch, got %d", len(listed))
	}
	if listed[0].RowIndex != 0 || listed[1].RowIndex != 1 {
		t.Fatalf("expected row order 0,1, got %d,%d", listed[0].RowIndex, listed[1].RowIndex)
	}
	first := listed[0]
	if first.FBAdID != "ad-1" || !first.LaunchPaused || first.IsCarousel || first.CallToAction != "SHOP_NOW" {
		t.Fatalf("unexpected stored launch: %+v", first)
	}
	if !first.LaunchedAt.Equal(launchedAt) {
		t.Fatalf("launched_at: want %v, got %v", launchedAt, first.LaunchedAt)
	}

	all, err := store.ListLaunches(ctx, "")
	if err != nil {
		t.Fatalf("list all launches: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 launches overall, got %d", len(all))
	}
}

func TestSQLiteStore_RecordLaunchRejectsUnknownBatchAndStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	if _, err := store.RecordLaunch(ctx, LaunchedAd{BatchID: "missing", AdSetID: "1", Status: StatusLaunched}); err == nil {
		t.Fatalf("expected foreign key error for unknown batch")
	}

	batch, err := store.CreateBatch(ctx, Batch{SourceFile: "a.csv"})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if _, err := store.RecordLaunch(ctx, LaunchedAd{BatchID: batch.ID, AdSetID: "1", Status: "DONE"}); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestSQLiteStore_ListBatchesCountsOutcomes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)
	batch, err := store.CreateBatch(ctx, Batch{SourceFile: "spring.csv", RowsTotal: 4, RowsValid: 3})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	for _, status := range []string{StatusLaunched, StatusLaunched, StatusFailed, StatusDryRun} {
		if _, err := store.RecordLaunch(ctx, LaunchedAd{BatchID: batch.ID, AdSetID: "1", Status: status}); err != nil {
			t.Fatalf("record launch: %v", err)
		}
	}

	batches, err := store.ListBatches(ctx)
	if err != nil {
		t.Fatalf("list batches: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}
	got := batches[0]
	if got.Launched != 2 || got.Failed != 1 || got.RowsTotal != 4 || got.RowsValid != 3 {
		t.Fatalf("unexpected batch counts: %+v", got)
	}
}

func TestSQLiteStore_GetAndDeleteLaunch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)
	batch, err := store.CreateBatch(ctx, Batch{SourceFile: "a.csv"})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	id, err := store.RecordLaunch(ctx, LaunchedAd{BatchID: batch.ID, AdSetID: "123", Status: StatusLaunched, FBAdID: "ad-9"})
	if err != nil {
		t.Fatalf("record launch: %v", err)
	}

	got, err := store.GetLaunchByID(ctx, id)
	if err != nil {
		t.Fatalf("get launch: %v", err)
	}
	if got.FBAdID != "ad-9" {
		t.Fatalf("fb ad id: want ad-9, got %q", got.FBAdID)
	}

	if err := store.DeleteLaunch(ctx, id); err != nil {
		t.Fatalf("delete launch: %v", err)
	}
	if _, err := store.GetLaunchByID(ctx, id); !errors.Is(err, ErrLaunchNotFound) {
		t.Fatalf("expected ErrLaunchNotFound after delete, got %v", err)
	}
	if err := store.DeleteLaunch(ctx, id); !errors.Is(err, ErrLaunchNotFound) {
		t.Fatalf("expected ErrLaunchNotFound on second delete, got %v", err)
	}
}

func TestSQLiteStore_DeleteBatchCascades(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)
	batch, err := store.CreateBatch(ctx, Batch{SourceFile: "a.csv"})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if _, err := store.RecordLaunch(ctx, LaunchedAd{BatchID: batch.ID, AdSetID: "1", Status: StatusLaunched}); err != nil {
		t.Fatalf("record launch: %v", err)
	}

	if err := store.DeleteBatch(ctx, batch.ID); err != nil {
		t.Fatalf("delete batch: %v", err)
	}
	remaining, err := store.ListLaunches(ctx, "")
	if err != nil {
		t.Fatalf("list launches: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected cascade delete, got %d launches", len(remaining))
	}
	if err := store.DeleteBatch(ctx, batch.ID); !errors.Is(err, ErrBatchNotFound) {
		t.Fatalf("expected ErrBatchNotFound, got %v", err)
	}
}
