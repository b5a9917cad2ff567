package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	StatusLaunched = "LAUNCHED"
	StatusFailed   = "FAILED"
	StatusDryRun   = "DRY_RUN"
)

var (
	ErrLaunchNotFound = errors.New("launch not found")
	ErrBatchNotFound  = errors.New("launch batch not found")
	ErrCopyNotFound   = errors.New("copy template not found")
)

// Batch is one CSV file submitted for launch.
type Batch struct {
	ID         string    `json:"id"`
	SourceFile string    `json:"sourceFile"`
	RowsTotal  int       `json:"rowsTotal"`
	RowsValid  int       `json:"rowsValid"`
	CreatedAt  time.Time `json:"createdAt"`
	// Launched and Failed are filled by ListBatches.
	Launched int `json:"launched"`
	Failed   int `json:"failed"`
}

// LaunchedAd records the outcome of one row launched into one ad set.
type LaunchedAd struct {
	ID           int64     `json:"id"`
	BatchID      string    `json:"batchId"`
	RowIndex     int       `json:"rowIndex"`
	AdSetID      string    `json:"adSetId"`
	FBAdID       string    `json:"fbAdId,omitempty"`
	FBCreativeID string    `json:"fbCreativeId,omitempty"`
	CustomName   string    `json:"customName,omitempty"`
	PrimaryText  string    `json:"primaryText"`
	Headline     string    `json:"headline"`
	Link         string    `json:"link"`
	CallToAction string    `json:"callToAction"`
	IsCarousel   bool      `json:"isCarousel"`
	LaunchPaused bool      `json:"launchPaused"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	LaunchedAt   time.Time `json:"launchedAt"`
}

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Launch workers record concurrently; one connection serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS launch_batches (
	id TEXT PRIMARY KEY,
	source_file TEXT NOT NULL,
	rows_total INTEGER NOT NULL CHECK(rows_total >= 0),
	rows_valid INTEGER NOT NULL CHECK(rows_valid >= 0),
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS launched_ads (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id TEXT NOT NULL REFERENCES launch_batches(id) ON DELETE CASCADE,
	row_index INTEGER NOT NULL,
	ad_set_id TEXT NOT NULL,
	fb_ad_id TEXT NOT NULL DEFAULT '',
	fb_creative_id TEXT NOT NULL DEFAULT '',
	custom_name TEXT NOT NULL DEFAULT '',
	primary_text TEXT NOT NULL DEFAULT '',
	headline TEXT NOT NULL DEFAULT '',
	link TEXT NOT NULL DEFAULT '',
	call_to_action TEXT NOT NULL DEFAULT '',
	is_carousel INTEGER NOT NULL DEFAULT 0,
	launch_paused INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL CHECK(status IN ('LAUNCHED', 'FAILED', 'DRY_RUN')),
	error_message TEXT NOT NULL DEFAULT '',
	launched_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_launched_ads_batch ON launched_ads(batch_id, row_index);

CREATE TABLE IF NOT EXISTS copy_templates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ad_account_id TEXT NOT NULL,
	name TEXT NOT NULL,
	primary_texts TEXT NOT NULL,
	headlines TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	link TEXT NOT NULL,
	display_link TEXT NOT NULL DEFAULT '',
	utm_parameters TEXT NOT NULL DEFAULT '',
	call_to_action TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_copy_templates_account ON copy_templates(ad_account_id, updated_at);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// CreateBatch stores a new batch and returns it with its generated ID.
func (s *SQLiteStore) CreateBatch(ctx context.Context, batch Batch) (Batch, error) {
	if strings.TrimSpace(batch.ID) == "" {
		batch.ID = uuid.NewString()
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = s.now()
	}
	batch.CreatedAt = batch.CreatedAt.UTC().Truncate(time.Second)

	const insertStmt = `
INSERT INTO launch_batches (id, source_file, rows_total, rows_valid, created_at)
VALUES (?, ?, ?, ?, ?);`

	if _, err := s.db.ExecContext(
		ctx,
		insertStmt,
		batch.ID,
		batch.SourceFile,
		batch.RowsTotal,
		batch.RowsValid,
		batch.CreatedAt.Format(time.RFC3339),
	); err != nil {
		return Batch{}, fmt.Errorf("insert launch batch: %w", err)
	}
	return batch, nil
}

// RecordLaunch inserts one launch outcome and returns its row ID.
func (s *SQLiteStore) RecordLaunch(ctx context.Context, ad LaunchedAd) (int64, error) {
	if strings.TrimSpace(ad.BatchID) == "" {
		return 0, errors.New("batch id is required")
	}
	switch ad.Status {
	case StatusLaunched, StatusFailed, StatusDryRun:
	default:
		return 0, fmt.Errorf("unknown launch status %q", ad.Status)
	}
	if ad.LaunchedAt.IsZero() {
		ad.LaunchedAt = s.now()
	}

	const insertStmt = `
INSERT INTO launched_ads (
	batch_id,
	row_index,
	ad_set_id,
	fb_ad_id,
	fb_creative_id,
	custom_name,
	primary_text,
	headline,
	link,
	call_to_action,
	is_carousel,
	launch_paused,
	status,
	error_message,
	launched_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	res, err := s.db.ExecContext(
		ctx,
		insertStmt,
		ad.BatchID,
		ad.RowIndex,
		ad.AdSetID,
		ad.FBAdID,
		ad.FBCreativeID,
		ad.CustomName,
		ad.PrimaryText,
		ad.Headline,
		ad.Link,
		ad.CallToAction,
		boolToInt(ad.IsCarousel),
		boolToInt(ad.LaunchPaused),
		ad.Status,
		ad.ErrorMessage,
		ad.LaunchedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert launched ad: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted row id: %w", err)
	}
	return id, nil
}

const selectLaunchColumns = `
SELECT
	id,
	batch_id,
	row_index,
	ad_set_id,
	fb_ad_id,
	fb_creative_id,
	custom_name,
	primary_text,
	headline,
	link,
	call_to_action,
	is_carousel,
	launch_paused,
	status,
	error_message,
	launched_at
FROM launched_ads`

// ListLaunches returns launch outcomes ordered by batch and row. An empty
// batchID lists every batch.
func (s *SQLiteStore) ListLaunches(ctx context.Context, batchID string) ([]LaunchedAd, error) {
	query := selectLaunchColumns + `
ORDER BY launched_at, batch_id, row_index, id;`
	args := []any{}
	if strings.TrimSpace(batchID) != "" {
		query = selectLaunchColumns + `
WHERE batch_id = ?
ORDER BY row_index, id;`
		args = append(args, batchID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query launched ads: %w", err)
	}
	defer rows.Close()

	launches := make([]LaunchedAd, 0, 64)
	for rows.Next() {
		ad, err := scanLaunch(rows)
		if err != nil {
			return nil, err
		}
		launches = append(launches, ad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate launched ads: %w", err)
	}

	return launches, nil
}

// GetLaunchByID returns one launch outcome by ID.
func (s *SQLiteStore) GetLaunchByID(ctx context.Context, id int64) (LaunchedAd, error) {
	if id <= 0 {
		return LaunchedAd{}, fmt.Errorf("launch id must be > 0")
	}

	row := s.db.QueryRowContext(ctx, selectLaunchColumns+`
WHERE id = ?;`, id)
	ad, err := scanLaunch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LaunchedAd{}, ErrLaunchNotFound
		}
		return LaunchedAd{}, err
	}
	return ad, nil
}

// DeleteLaunch removes one launch outcome from history. The ad itself is not
// touched on Facebook.
func (s *SQLiteStore) DeleteLaunch(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("launch id must be > 0")
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM launched_ads WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete launched ad %d: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read deleted row count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrLaunchNotFound
	}
	return nil
}

// ListBatches returns all batches, newest first, with outcome counts.
func (s *SQLiteStore) ListBatches(ctx context.Context) ([]Batch, error) {
	const query = `
SELECT
	b.id,
	b.source_file,
	b.rows_total,
	b.rows_valid,
	b.created_at,
	COALESCE(SUM(CASE WHEN a.status = 'LAUNCHED' THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN a.status = 'FAILED' THEN 1 ELSE 0 END), 0)
FROM launch_batches b
LEFT JOIN launched_ads a ON a.batch_id = b.id
GROUP BY b.id
ORDER BY b.created_at DESC, b.id;
`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query launch batches: %w", err)
	}
	defer rows.Close()

	batches := make([]Batch, 0, 16)
	for rows.Next() {
		var (
			batch      Batch
			createdRaw string
		)
		if err := rows.Scan(
			&batch.ID,
			&batch.SourceFile,
			&batch.RowsTotal,
			&batch.RowsValid,
			&createdRaw,
			&batch.Launched,
			&batch.Failed,
		); err != nil {
			return nil, fmt.Errorf("scan launch batch: %w", err)
		}
		batch.CreatedAt, err = time.Parse(time.RFC3339, createdRaw)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdRaw, err)
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate launch batches: %w", err)
	}

	return batches, nil
}

// DeleteBatch removes a batch and, by cascade, its launch outcomes.
func (s *SQLiteStore) DeleteBatch(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM launch_batches WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete launch batch %s: %w", id, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read deleted row count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrBatchNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLaunch(row rowScanner) (LaunchedAd, error) {
	var (
		ad          LaunchedAd
		isCarousel  int
		paused      int
		launchedRaw string
	)
	if err := row.Scan(
		&ad.ID,
		&ad.BatchID,
		&ad.RowIndex,
		&ad.AdSetID,
		&ad.FBAdID,
		&ad.FBCreativeID,
		&ad.CustomName,
		&ad.PrimaryText,
		&ad.Headline,
		&ad.Link,
		&ad.CallToAction,
		&isCarousel,
		&paused,
		&ad.Status,
		&ad.ErrorMessage,
		&launchedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LaunchedAd{}, err
		}
		return LaunchedAd{}, fmt.Errorf("scan launched ad: %w", err)
	}

	ad.IsCarousel = isCarousel != 0
	ad.LaunchPaused = paused != 0

	launchedAt, err := time.Parse(time.RFC3339, launchedRaw)
	if err != nil {
		return LaunchedAd{}, fmt.Errorf("parse launched_at %q: %w", launchedRaw, err)
	}
	ad.LaunchedAt = launchedAt
	return ad, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
