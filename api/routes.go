package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"realty-analyzer/metrics"
	"realty-analyzer/utils"
)

// NewRouter registers all routes. Both the slash and no-slash forms of the
// analyze paths are served.
func NewRouter(h *Handler, logger *utils.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(Recover(logger))
	router.Use(AccessLog(logger))
	router.Use(CORS)

	router.HandleFunc("/api/analyze/", h.Analyze).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/analyze", h.Analyze).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/analyze/export/", h.Export).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/analyze/export", h.Export).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return router
}
