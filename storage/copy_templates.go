package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"adlauncher/adcsv"
)

// ErrCopyInvalid rejects templates that cannot fill a single ad.
var ErrCopyInvalid = errors.New("invalid copy template")

// CopyTemplate is reusable ad copy stored per ad account.
type CopyTemplate struct {
	ID            int64     `json:"id"`
	AdAccountID   string    `json:"adAccountId"`
	Name          string    `json:"name"`
	PrimaryTexts  []string  `json:"primaryTexts"`
	Headlines     []string  `json:"headlines"`
	Description   string    `json:"description,omitempty"`
	Link          string    `json:"link"`
	DisplayLink   string    `json:"displayLink,omitempty"`
	UTMParameters string    `json:"utmParameters,omitempty"`
	CallToAction  string    `json:"callToAction"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CopyTemplateFromRow turns an imported copy row into a template for accountID.
func CopyTemplateFromRow(accountID string, row adcsv.CopyRow) CopyTemplate {
	return CopyTemplate{
		AdAccountID:   accountID,
		Name:          row.Name,
		PrimaryTexts:  row.PrimaryTexts,
		Headlines:     row.Headlines,
		Description:   row.Description,
		Link:          row.Link,
		DisplayLink:   row.DisplayLink,
		UTMParameters: row.UTMParameters,
		CallToAction:  row.CallToAction,
	}
}

func (t *CopyTemplate) normalize() error {
	t.AdAccountID = strings.TrimSpace(t.AdAccountID)
	t.Name = strings.TrimSpace(t.Name)
	t.Link = strings.TrimSpace(t.Link)
	t.PrimaryTexts = compactTexts(t.PrimaryTexts)
	t.Headlines = compactTexts(t.Headlines)
	if strings.TrimSpace(t.CallToAction) == "" {
		t.CallToAction = adcsv.DefaultCallToAction
	}
	if t.AdAccountID == "" || t.Name == "" || t.Link == "" || len(t.PrimaryTexts) == 0 || len(t.Headlines) == 0 {
		return fmt.Errorf("%w: account, name, primary text, headline and link are required", ErrCopyInvalid)
	}
	if len(t.PrimaryTexts) > adcsv.MaxVariations || len(t.Headlines) > adcsv.MaxVariations {
		return fmt.Errorf("%w: at most %d primary texts and headlines", ErrCopyInvalid, adcsv.MaxVariations)
	}
	return nil
}

func compactTexts(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}

// CreateCopyTemplate stores a template and returns it with its ID and timestamps.
func (s *SQLiteStore) CreateCopyTemplate(ctx context.Context, template CopyTemplate) (CopyTemplate, error) {
	return createCopyTemplate(ctx, s.db, s.now(), template)
}

// ImportCopyTemplates stores all templates in one transaction.
func (s *SQLiteStore) ImportCopyTemplates(ctx context.Context, templates []CopyTemplate) ([]CopyTemplate, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin copy import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()
	stored := make([]CopyTemplate, 0, len(templates))
	for i, template := range templates {
		created, err := createCopyTemplate(ctx, tx, now, template)
		if err != nil {
			return nil, fmt.Errorf("import copy template %d: %w", i+1, err)
		}
		stored = append(stored, created)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit copy import: %w", err)
	}
	return stored, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func createCopyTemplate(ctx context.Context, db execer, now time.Time, template CopyTemplate) (CopyTemplate, error) {
	if err := template.normalize(); err != nil {
		return CopyTemplate{}, err
	}
	primaryTexts, headlines, err := encodeTexts(template)
	if err != nil {
		return CopyTemplate{}, err
	}
	template.CreatedAt = now.UTC().Truncate(time.Second)
	template.UpdatedAt = template.CreatedAt

	const insertStmt = `
INSERT INTO copy_templates (
	ad_account_id, name, primary_texts, headlines, description, link,
	display_link, utm_parameters, call_to_action, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	res, err := db.ExecContext(
		ctx,
		insertStmt,
		template.AdAccountID,
		template.Name,
		primaryTexts,
		headlines,
		template.Description,
		template.Link,
		template.DisplayLink,
		template.UTMParameters,
		template.CallToAction,
		template.CreatedAt.Format(time.RFC3339),
		template.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return CopyTemplate{}, fmt.Errorf("insert copy template %q: %w", template.Name, err)
	}
	template.ID, err = res.LastInsertId()
	if err != nil {
		return CopyTemplate{}, fmt.Errorf("read copy template id: %w", err)
	}
	return template, nil
}

// UpdateCopyTemplate replaces the copy of an existing template. The account
// and creation time stay as stored.
func (s *SQLiteStore) UpdateCopyTemplate(ctx context.Context, template CopyTemplate) (CopyTemplate, error) {
	existing, err := s.GetCopyTemplate(ctx, template.ID)
	if err != nil {
		return CopyTemplate{}, err
	}
	template.AdAccountID = existing.AdAccountID
	template.CreatedAt = existing.CreatedAt
	if err := template.normalize(); err != nil {
		return CopyTemplate{}, err
	}
	primaryTexts, headlines, err := encodeTexts(template)
	if err != nil {
		return CopyTemplate{}, err
	}
	template.UpdatedAt = s.now().UTC().Truncate(time.Second)

	const updateStmt = `
UPDATE copy_templates SET
	name = ?, primary_texts = ?, headlines = ?, description = ?, link = ?,
	display_link = ?, utm_parameters = ?, call_to_action = ?, updated_at = ?
WHERE id = ?;`

	if _, err := s.db.ExecContext(
		ctx,
		updateStmt,
		template.Name,
		primaryTexts,
		headlines,
		template.Description,
		template.Link,
		template.DisplayLink,
		template.UTMParameters,
		template.CallToAction,
		template.UpdatedAt.Format(time.RFC3339),
		template.ID,
	); err != nil {
		return CopyTemplate{}, fmt.Errorf("update copy template %d: %w", template.ID, err)
	}
	return template, nil
}

const selectCopyColumns = `
SELECT
	id, ad_account_id, name, primary_texts, headlines, description, link,
	display_link, utm_parameters, call_to_action, created_at, updated_at
FROM copy_templates`

// ListCopyTemplates returns the templates of accountID, most recently updated
// first. An empty accountID lists every account.
func (s *SQLiteStore) ListCopyTemplates(ctx context.Context, accountID string) ([]CopyTemplate, error) {
	query := selectCopyColumns
	args := []any{}
	if accountID = strings.TrimSpace(accountID); accountID != "" {
		query += "\nWHERE ad_account_id = ?"
		args = append(args, accountID)
	}
	query += "\nORDER BY updated_at DESC, id DESC;"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query copy templates: %w", err)
	}
	defer rows.Close()

	templates := make([]CopyTemplate, 0, 16)
	for rows.Next() {
		template, err := scanCopyTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate copy templates: %w", err)
	}
	return templates, nil
}

func (s *SQLiteStore) GetCopyTemplate(ctx context.Context, id int64) (CopyTemplate, error) {
	row := s.db.QueryRowContext(ctx, selectCopyColumns+"\nWHERE id = ?;", id)
	template, err := scanCopyTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CopyTemplate{}, ErrCopyNotFound
		}
		return CopyTemplate{}, err
	}
	return template, nil
}

func (s *SQLiteStore) DeleteCopyTemplate(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM copy_templates WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete copy template %d: %w", id, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read deleted row count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCopyNotFound
	}
	return nil
}

func encodeTexts(template CopyTemplate) (string, string, error) {
	primaryTexts, err := json.Marshal(template.PrimaryTexts)
	if err != nil {
		return "", "", fmt.Errorf("encode primary texts: %w", err)
	}
	headlines, err := json.Marshal(template.Headlines)
	if err != nil {
		return "", "", fmt.Errorf("encode headlines: %w", err)
	}
	return string(primaryTexts), string(headlines), nil
}

func scanCopyTemplate(row rowScanner) (CopyTemplate, error) {
	var (
		template     CopyTemplate
		primaryTexts string
		headlines    string
		createdRaw   string
		updatedRaw   string
	)
	if err := row.Scan(
		&template.ID,
		&template.AdAccountID,
		&template.Name,
		&primaryTexts,
		&headlines,
		&template.Description,
		&template.Link,
		&template.DisplayLink,
		&template.UTMParameters,
		&template.CallToAction,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CopyTemplate{}, err
		}
		return CopyTemplate{}, fmt.Errorf("scan copy template: %w", err)
	}

	if err := json.Unmarshal([]byte(primaryTexts), &template.PrimaryTexts); err != nil {
		return CopyTemplate{}, fmt.Errorf("decode primary texts of copy template %d: %w", template.ID, err)
	}
	if err := json.Unmarshal([]byte(headlines), &template.Headlines); err != nil {
		return CopyTemplate{}, fmt.Errorf("decode headlines of copy template %d: %w", template.ID, err)
	}

	var err error
	if template.CreatedAt, err = time.Parse(time.RFC3339, createdRaw); err != nil {
		return CopyTemplate{}, fmt.Errorf("parse created_at %q: %w", createdRaw, err)
	}
	if template.UpdatedAt, err = time.Parse(time.RFC3339, updatedRaw); err != nil {
		return CopyTemplate{}, fmt.Errorf("parse updated_at %q: %w", updatedRaw, err)
	}
	return template, nil
}
