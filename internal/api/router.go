// Package api exposes the explorer over HTTP for the presentation
// layer: CSV uploads in, JSON result bundles out.
package api

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/couchcryptid/lightning-pulse-api/internal/config"
	"github.com/couchcryptid/lightning-pulse-api/internal/explorer"
	"github.com/couchcryptid/lightning-pulse-api/internal/ingest"
	"github.com/couchcryptid/lightning-pulse-api/internal/model"
	"github.com/couchcryptid/lightning-pulse-api/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves the upload and query endpoints.
type Handler struct {
	explorer       *explorer.Explorer
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewRouter builds the chi router with middleware, health, and metrics.
func NewRouter(ex *explorer.Explorer, cfg *config.Config, m *observability.Metrics, logger *slog.Logger) http.Handler {
	h := &Handler{
		explorer:       ex,
		logger:         logger,
		maxUploadBytes: cfg.MaxUploadBytes,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.AllowAll().Handler)
	r.Use(observability.MetricsMiddleware(m))

	r.Post("/sources", h.handleUpload)
	r.Get("/sources", h.handleListSources)
	r.Delete("/sources", h.handleReset)
	r.With(QueryLimit(cfg.QueryConcurrency)).Post("/query", h.handleQuery)

	r.Get("/healthz", observability.LivenessHandler())
	r.Get("/readyz", observability.ReadinessHandler(ex))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// handleUpload accepts one or more ENTLN CSV files under the "files"
// multipart field and merges them into the session store. Per-file and
// per-row failures are reported in the merge result, never as an HTTP
// error — only an unreadable request is a 400.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse multipart form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp-file cleanup is best effort

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, errors.New(`no files uploaded under field "files"`))
		return
	}

	var tables []ingest.RawTable
	var result model.MergeResult
	for _, fh := range files {
		tbl, err := readCSVFile(fh)
		if err != nil {
			h.logger.Warn("unreadable upload", "file", fh.Filename, "error", err)
			result.Merge(model.MergeResult{
				Rejected:   1,
				Rejections: []model.RowError{{Row: 0, Reason: fh.Filename + ": " + err.Error()}},
			})
			continue
		}
		tables = append(tables, tbl)
	}

	result.Merge(h.explorer.Ingest(tables))
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleListSources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sources": h.explorer.Sources()})
}

func (h *Handler) handleReset(w http.ResponseWriter, _ *http.Request) {
	h.explorer.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// queryRequest is the /query body.
type queryRequest struct {
	Filter      *model.PulseFilter        `json:"filter,omitempty"`
	Aggregation *model.AggregationRequest `json:"aggregation,omitempty"`
}

// handleQuery runs one filter+aggregate pass over the current store
// snapshot. Validation failures are 400s; an empty match is a normal
// 200 with zero counts and "no data" histograms.
func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode query request: %w", err))
		return
	}

	bundle, err := h.explorer.Query(req.Filter, req.Aggregation)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

// readCSVFile parses one uploaded CSV into a raw table.
func readCSVFile(fh *multipart.FileHeader) (ingest.RawTable, error) {
	f, err := fh.Open()
	if err != nil {
		return ingest.RawTable{}, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // short rows reject per-row, not per-file
	rows, err := reader.ReadAll()
	if err != nil {
		return ingest.RawTable{}, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return ingest.RawTable{}, errors.New("empty file")
	}

	return ingest.RawTable{Name: fh.Filename, Header: rows[0], Rows: rows[1:]}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
