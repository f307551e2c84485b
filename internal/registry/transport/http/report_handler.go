package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bluecarbonmrv/registry/internal/registry/app"
	"github.com/bluecarbonmrv/registry/internal/registry/middleware"
)

// ReportHandler handles report export requests.
type ReportHandler struct {
	reports *app.ReportService
	logger  *slog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports *app.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger.With("handler", "reports")}
}

// RegisterProtectedRoutes registers the export endpoint.
func (h *ReportHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/reports/export", h.ExportReport)
}

func (h *ReportHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	var in app.ExportInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	export, err := h.reports.Export(r.Context(), actor, in)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, APIResponse{Data: export, Message: "Report generated successfully"})
}
