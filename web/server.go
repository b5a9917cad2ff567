// Package web serves the local launch API. It is meant for a single operator
// on localhost and has no authentication of its own.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"adlauncher/adcsv"
	"adlauncher/config"
	"adlauncher/facebook"
	"adlauncher/launcher"
	"adlauncher/media"
	"adlauncher/storage"
)

const (
	multipartMemory   = 32 << 20
	multipartOverhead = 1 << 20
	templateFilename  = "ad-launch-template.csv"
)

// HistoryStore is the launch history the server reads and writes.
type HistoryStore interface {
	CreateBatch(ctx context.Context, batch storage.Batch) (storage.Batch, error)
	ListLaunches(ctx context.Context, batchID string) ([]storage.LaunchedAd, error)
	ListBatches(ctx context.Context) ([]storage.Batch, error)
}

type Launcher interface {
	Launch(ctx context.Context, batchID string, rows []adcsv.AdRow, opts launcher.Options) (launcher.Summary, error)
}

// CopyStore keeps reusable ad copy per ad account.
type CopyStore interface {
	CreateCopyTemplate(ctx context.Context, template storage.CopyTemplate) (storage.CopyTemplate, error)
	ImportCopyTemplates(ctx context.Context, templates []storage.CopyTemplate) ([]storage.CopyTemplate, error)
	UpdateCopyTemplate(ctx context.Context, template storage.CopyTemplate) (storage.CopyTemplate, error)
	ListCopyTemplates(ctx context.Context, accountID string) ([]storage.CopyTemplate, error)
	GetCopyTemplate(ctx context.Context, id int64) (storage.CopyTemplate, error)
	DeleteCopyTemplate(ctx context.Context, id int64) error
}

type MediaStore interface {
	KeyFor(accountID, filename string) string
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (media.Object, error)
	List(ctx context.Context, prefix string) ([]media.Object, error)
}

// Dependencies are optional except Store; routes whose dependency is nil
// answer 503.
type Dependencies struct {
	Store    HistoryStore
	Client   facebook.Client
	Launcher Launcher
	Media    MediaStore
	Copy     CopyStore
	Logger   *zap.Logger
}

type Server struct {
	cfg      config.Config
	store    HistoryStore
	client   facebook.Client
	launcher Launcher
	media    MediaStore
	copy     CopyStore
	logger   *zap.Logger
	router   chi.Router
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

type launchResponse struct {
	BatchID    string           `json:"batchId"`
	DryRun     bool             `json:"dryRun"`
	Validation adcsv.Validation `json:"validation"`
	Summary    launcher.Summary `json:"summary"`
}

type deleteAdsRequest struct {
	AdIDs []string `json:"adIds"`
}

type deleteAdResult struct {
	AdID    string `json:"adId"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func NewServer(cfg config.Config, deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	server := &Server{
		cfg:      cfg,
		store:    deps.Store,
		client:   deps.Client,
		launcher: deps.Launcher,
		media:    deps.Media,
		copy:     deps.Copy,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	if len(cfg.Server.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", server.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/launch/csv/parse", server.handleParseCSV)
		r.Get("/launch/csv/template", server.handleTemplate)
		r.Post("/launch/csv", server.handleLaunchCSV)
		r.Get("/launch/adsets", server.handleAdSets)
		r.Get("/launch/adsets/{adSetID}/ads", server.handleAdsInAdSet)
		r.Get("/launch/pages", server.handlePages)
		r.Post("/launch/ads/delete", server.handleDeleteAds)
		r.Get("/ads", server.handleHistory)
		r.Get("/batches", server.handleBatches)
		r.Post("/media", server.handleMediaUpload)
		r.Get("/media", server.handleMediaList)
		r.Get("/copy", server.handleCopyList)
		r.Post("/copy", server.handleCopyCreate)
		r.Put("/copy", server.handleCopyUpdate)
		r.Delete("/copy", server.handleCopyDelete)
		r.Post("/copy/import", server.handleCopyImport)
	})
	server.router = r

	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	sample, err := adcsv.SampleCSV()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build template", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", templateFilename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, sample)
}

func (s *Server) handleParseCSV(w http.ResponseWriter, r *http.Request) {
	rows, ok := s.parseUpload(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, adcsv.NewParseResponse(rows))
}

func (s *Server) handleLaunchCSV(w http.ResponseWriter, r *http.Request) {
	rows, ok := s.parseUpload(w, r)
	if !ok {
		return
	}

	dryRun, _ := strconv.ParseBool(strings.TrimSpace(r.FormValue("dryRun")))
	skipExisting, _ := strconv.ParseBool(strings.TrimSpace(r.FormValue("skipExisting")))
	if s.launcher == nil {
		writeError(w, http.StatusServiceUnavailable, "Launcher is not available", nil)
		return
	}
	if !dryRun {
		if err := s.cfg.RequireFacebook(); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Facebook is not configured", err)
			return
		}
	}

	report := adcsv.Summarize(rows)
	batch, err := s.store.CreateBatch(r.Context(), storage.Batch{
		SourceFile: uploadName(r),
		RowsTotal:  len(rows),
		RowsValid:  len(report.Valid),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create launch batch", err)
		return
	}

	summary, err := s.launcher.Launch(r.Context(), batch.ID, rows, launcher.Options{
		Concurrency:  s.cfg.Launch.Concurrency,
		DryRun:       dryRun,
		SkipExisting: skipExisting,
	})
	if err != nil {
		s.logger.Error("launch batch failed", zap.String("batch_id", batch.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to launch ads", err)
		return
	}

	s.logger.Info("launch batch finished",
		zap.String("batch_id", batch.ID),
		zap.Bool("dry_run", dryRun),
		zap.Int("jobs", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("duplicates", summary.Duplicates),
	)
	writeJSON(w, http.StatusOK, launchResponse{
		BatchID:    batch.ID,
		DryRun:     dryRun,
		Validation: report.Validation(),
		Summary:    summary,
	})
}

// parseUpload reads the multipart "file" field through the CSV pipeline and
// writes the error response itself when it returns false.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) ([]adcsv.AdRow, bool) {
	file, header, ok := s.openUpload(w, r)
	if !ok {
		return nil, false
	}
	defer file.Close()

	rows, err := adcsv.Parse(file, s.uploadOptions(header))
	if err != nil {
		s.writeParseError(w, header, err)
		return nil, false
	}
	return rows, true
}

// openUpload returns the multipart "file" field, bounded by the import size limit.
func (s *Server) openUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	if maxBytes := s.cfg.Import.MaxFileBytes; maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large", err)
			return nil, nil, false
		}
		writeError(w, http.StatusBadRequest, "No file provided", err)
		return nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided", nil)
		return nil, nil, false
	}
	return file, header, true
}

func (s *Server) uploadOptions(header *multipart.FileHeader) adcsv.Options {
	return adcsv.Options{
		Format:   uploadFormat(header),
		MaxBytes: s.cfg.Import.MaxFileBytes,
		MaxRows:  s.cfg.Import.MaxRows,
	}
}

func (s *Server) writeParseError(w http.ResponseWriter, header *multipart.FileHeader, err error) {
	var limitErr *adcsv.LimitError
	var parseFailure *adcsv.ParseFailure
	switch {
	case errors.As(err, &limitErr):
		writeError(w, http.StatusRequestEntityTooLarge, "File too large", err)
	case errors.As(err, &parseFailure):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "Failed to parse CSV",
			Detail: parseFailure.Detail(),
		})
	default:
		s.logger.Error("parse upload failed", zap.String("file", header.Filename), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to parse CSV", nil)
	}
}

func (s *Server) handleAdSets(w http.ResponseWriter, r *http.Request) {
	if !s.requireClient(w) {
		return
	}
	adSets, err := s.client.ListAdSets(r.Context(), s.cfg.Facebook.AdAccountID)
	if err != nil {
		s.upstreamError(w, "Failed to fetch ad sets", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"adSets": adSets})
}

func (s *Server) handleAdsInAdSet(w http.ResponseWriter, r *http.Request) {
	if !s.requireClient(w) {
		return
	}
	adSetID := strings.TrimSpace(chi.URLParam(r, "adSetID"))
	ads, err := s.client.ListAdsInAdSet(r.Context(), adSetID)
	if err != nil {
		s.upstreamError(w, "Failed to fetch ads", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ads": ads})
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	if !s.requireClient(w) {
		return
	}
	pages, err := s.client.ListPages(r.Context(), s.cfg.Facebook.AdAccountID)
	if err != nil {
		s.upstreamError(w, "Failed to fetch pages", err)
		return
	}
	for i := range pages {
		pages[i].AccessToken = ""
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": pages})
}

func (s *Server) handleDeleteAds(w http.ResponseWriter, r *http.Request) {
	if !s.requireClient(w) {
		return
	}

	var body deleteAdsRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(body.AdIDs) == 0 {
		writeError(w, http.StatusBadRequest, "Ad IDs required", nil)
		return
	}

	results := make([]deleteAdResult, 0, len(body.AdIDs))
	for _, adID := range body.AdIDs {
		result := deleteAdResult{AdID: adID, Success: true}
		if err := s.client.DeleteAd(r.Context(), adID); err != nil {
			result.Success = false
			result.Error = upstreamMessage(err)
		}
		results = append(results, result)
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	batchID := strings.TrimSpace(r.URL.Query().Get("batch"))
	launches, err := s.store.ListLaunches(r.Context(), batchID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load launch history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ads": launches})
}

func (s *Server) handleBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := s.store.ListBatches(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load launch batches", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"batches": batches})
}

func (s *Server) handleMediaUpload(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		writeError(w, http.StatusServiceUnavailable, "Media storage is not configured", nil)
		return
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "No file provided", err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided", nil)
		return
	}
	defer file.Close()

	key := s.media.KeyFor(s.cfg.Facebook.AdAccountID, header.Filename)
	object, err := s.media.Upload(r.Context(), key, file, header.Header.Get("Content-Type"))
	if err != nil {
		s.logger.Error("media upload failed", zap.String("key", key), zap.Error(err))
		writeError(w, http.StatusBadGateway, "Failed to upload media", err)
		return
	}
	writeJSON(w, http.StatusCreated, object)
}

func (s *Server) handleMediaList(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		writeError(w, http.StatusServiceUnavailable, "Media storage is not configured", nil)
		return
	}
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = s.cfg.Storage.KeyPrefix
	}
	objects, err := s.media.List(r.Context(), prefix)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to list media", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": objects})
}

func (s *Server) requireClient(w http.ResponseWriter) bool {
	if s.client == nil {
		writeError(w, http.StatusServiceUnavailable, "Facebook is not configured", nil)
		return false
	}
	return true
}

func (s *Server) upstreamError(w http.ResponseWriter, message string, err error) {
	s.logger.Warn("graph api request failed", zap.String("error_message", message), zap.Error(err))
	writeJSON(w, http.StatusBadGateway, errorResponse{Error: message, Detail: upstreamMessage(err)})
}

func upstreamMessage(err error) string {
	var apiErr *facebook.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

func uploadFormat(header *multipart.FileHeader) string {
	format, err := adcsv.FormatForPath(header.Filename)
	if err != nil {
		return "csv"
	}
	return format
}

func uploadName(r *http.Request) string {
	if r.MultipartForm == nil || len(r.MultipartForm.File["file"]) == 0 {
		return ""
	}
	return r.MultipartForm.File["file"][0].Filename
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(started)),
			)
		})
	}
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	response := errorResponse{Error: message}
	if err != nil {
		response.Detail = err.Error()
	}
	writeJSON(w, status, response)
}
