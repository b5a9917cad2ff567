package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"adlauncher/adcsv"
	"adlauncher/storage"
)

type copyRequest struct {
	ID            int64    `json:"id,omitempty"`
	AccountID     string   `json:"accountId"`
	Name          string   `json:"name"`
	PrimaryTexts  []string `json:"primaryTexts"`
	Headlines     []string `json:"headlines"`
	Description   string   `json:"description"`
	Link          string   `json:"link"`
	DisplayLink   string   `json:"displayLink"`
	UTMParameters string   `json:"utmParameters"`
	CallToAction  string   `json:"callToAction"`
}

func (c copyRequest) template(defaultAccount string) storage.CopyTemplate {
	account := strings.TrimSpace(c.AccountID)
	if account == "" {
		account = defaultAccount
	}
	return storage.CopyTemplate{
		ID:            c.ID,
		AdAccountID:   account,
		Name:          c.Name,
		PrimaryTexts:  c.PrimaryTexts,
		Headlines:     c.Headlines,
		Description:   c.Description,
		Link:          c.Link,
		DisplayLink:   c.DisplayLink,
		UTMParameters: c.UTMParameters,
		CallToAction:  c.CallToAction,
	}
}

type copyImportResponse struct {
	Imported int `json:"imported"`
	Failed   int `json:"failed"`
}

func (s *Server) handleCopyList(w http.ResponseWriter, r *http.Request) {
	if !s.requireCopy(w) {
		return
	}

	if rawID := strings.TrimSpace(r.URL.Query().Get("id")); rawID != "" {
		id, ok := parseCopyID(w, rawID)
		if !ok {
			return
		}
		template, err := s.copy.GetCopyTemplate(r.Context(), id)
		if err != nil {
			s.copyStoreError(w, "Failed to fetch template", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"template": template})
		return
	}

	account := s.copyAccount(r.URL.Query().Get("accountId"))
	if account == "" {
		writeError(w, http.StatusBadRequest, "Account ID required", nil)
		return
	}
	templates, err := s.copy.ListCopyTemplates(r.Context(), account)
	if err != nil {
		s.copyStoreError(w, "Failed to fetch templates", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

func (s *Server) handleCopyCreate(w http.ResponseWriter, r *http.Request) {
	if !s.requireCopy(w) {
		return
	}

	var body copyRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	template, err := s.copy.CreateCopyTemplate(r.Context(), body.template(s.copyAccount("")))
	if err != nil {
		s.copyStoreError(w, "Failed to create template", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"template": template})
}

func (s *Server) handleCopyUpdate(w http.ResponseWriter, r *http.Request) {
	if !s.requireCopy(w) {
		return
	}

	var body copyRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.ID <= 0 {
		writeError(w, http.StatusBadRequest, "Template ID required", nil)
		return
	}
	template, err := s.copy.UpdateCopyTemplate(r.Context(), body.template(""))
	if err != nil {
		s.copyStoreError(w, "Failed to update template", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"template": template})
}

func (s *Server) handleCopyDelete(w http.ResponseWriter, r *http.Request) {
	if !s.requireCopy(w) {
		return
	}

	rawID := strings.TrimSpace(r.URL.Query().Get("id"))
	if rawID == "" {
		writeError(w, http.StatusBadRequest, "Template ID required", nil)
		return
	}
	id, ok := parseCopyID(w, rawID)
	if !ok {
		return
	}
	if err := s.copy.DeleteCopyTemplate(r.Context(), id); err != nil {
		s.copyStoreError(w, "Failed to delete template", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleCopyImport stores every complete row of an uploaded copy sheet.
// Rows missing a required cell are counted as failed.
func (s *Server) handleCopyImport(w http.ResponseWriter, r *http.Request) {
	if !s.requireCopy(w) {
		return
	}

	file, header, ok := s.openUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	account := s.copyAccount(r.FormValue("accountId"))
	if account == "" {
		writeError(w, http.StatusBadRequest, "File and account ID required", nil)
		return
	}

	parsed, err := adcsv.ParseCopy(file, s.uploadOptions(header))
	if err != nil {
		s.writeParseError(w, header, err)
		return
	}

	templates := make([]storage.CopyTemplate, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		templates = append(templates, storage.CopyTemplateFromRow(account, row))
	}
	stored, err := s.copy.ImportCopyTemplates(r.Context(), templates)
	if err != nil {
		s.copyStoreError(w, "Failed to import templates", err)
		return
	}

	s.logger.Info("copy templates imported",
		zap.String("account_id", account),
		zap.Int("imported", len(stored)),
		zap.Int("failed", len(parsed.Skipped)),
	)
	writeJSON(w, http.StatusOK, copyImportResponse{Imported: len(stored), Failed: len(parsed.Skipped)})
}

func (s *Server) requireCopy(w http.ResponseWriter) bool {
	if s.copy == nil {
		writeError(w, http.StatusServiceUnavailable, "Copy templates are not available", nil)
		return false
	}
	return true
}

// copyAccount falls back to the configured ad account.
func (s *Server) copyAccount(requested string) string {
	account := strings.TrimSpace(requested)
	if account == "" {
		account = strings.TrimSpace(s.cfg.Facebook.AdAccountID)
	}
	return strings.TrimPrefix(account, "act_")
}

func (s *Server) copyStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, storage.ErrCopyNotFound):
		writeError(w, http.StatusNotFound, "Template not found", nil)
	case errors.Is(err, storage.ErrCopyInvalid):
		writeError(w, http.StatusBadRequest, "Missing required fields", err)
	default:
		s.logger.Error("copy template request failed", zap.String("error_message", message), zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, nil)
	}
}

func parseCopyID(w http.ResponseWriter, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid template ID", nil)
		return 0, false
	}
	return id, true
}
