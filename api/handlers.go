package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"realty-analyzer/metrics"
	"realty-analyzer/models"
	"realty-analyzer/services"
	"realty-analyzer/storage"
	"realty-analyzer/utils"
)

// Handler serves the analyze endpoints.
type Handler struct {
	analyzer *services.Analyzer
	logger   *utils.Logger
}

// NewHandler creates a Handler backed by analyzer.
func NewHandler(analyzer *services.Analyzer, logger *utils.Logger) *Handler {
	return &Handler{analyzer: analyzer, logger: logger}
}

// Analyze handles GET /api/analyze/?query=...
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	query := r.URL.Query().Get("query")

	intent, resp, err := h.analyzer.Run(r.Context(), query)
	status := http.StatusOK
	if err != nil {
		status = h.writeError(w, query, err)
	} else {
		writeJSON(w, http.StatusOK, resp)
	}

	metrics.RequestsTotal.WithLabelValues(intent.Kind.String(), strconv.Itoa(status)).Inc()
	metrics.RequestDurationMs.Observe(float64(time.Since(start).Milliseconds()))
}

// Export handles GET /api/analyze/export/?query=... and returns the table
// rows of the result as a CSV attachment. No summary is generated.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	_, resp, err := h.analyzer.Table(r.Context(), query)
	if err != nil {
		h.writeError(w, query, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="filtered_data.csv"`)
	w.Header().Set("Cache-Control", "no-store")
	if err := storage.NewCSVWriter(w).WriteRecords(resp.Table); err != nil {
		h.logger.Error("[api] CSV export failed for %q: %v", query, err)
	}
}

// Health reports liveness and the loaded record count.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"records": h.analyzer.Dataset().Len(),
	})
}

// writeError maps err to a status, writes the JSON error body and returns the status.
func (h *Handler) writeError(w http.ResponseWriter, query string, err error) int {
	var qe *services.QueryError
	if errors.As(err, &qe) {
		h.logger.Debug("[api] query %q rejected: %s", query, qe.Message)
		writeJSON(w, qe.Status(), models.ErrorResponse{Error: qe.Message})
		return qe.Status()
	}

	h.logger.Error("[api] query %q failed: %v", query, err)
	writeInternalError(w, err)
	return http.StatusInternalServerError
}

func writeInternalError(w http.ResponseWriter, cause any) {
	writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{
		Error: fmt.Sprintf("Server error: %v", cause),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
