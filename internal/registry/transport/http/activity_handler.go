package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bluecarbonmrv/registry/internal/registry/app"
	"github.com/bluecarbonmrv/registry/internal/registry/middleware"
	"github.com/bluecarbonmrv/registry/internal/registry/repository"
)

// ActivityHandler handles HTTP requests for activities and verification.
type ActivityHandler struct {
	activities *app.ActivityService
	logger     *slog.Logger
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activities *app.ActivityService, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{activities: activities, logger: logger.With("handler", "activities")}
}

// RegisterPublicRoutes registers the read endpoints.
func (h *ActivityHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/activities", h.ListActivities)
	r.Get("/projects/{projectID}/verification-log", h.GetVerificationLog)
}

// RegisterProtectedRoutes registers the mutating endpoints.
func (h *ActivityHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/activities", h.CreateActivity)
	r.Post("/activities/{activityID}/approve", h.ApproveActivity)
}

func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.ActivityFilter{
		ProjectID: q.Get("projectId"),
		UserID:    q.Get("userId"),
	}
	activities, err := h.activities.List(r.Context(), filter)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, APIResponse{Data: activities})
}

func (h *ActivityHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	var in app.ActivityCreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	activity, err := h.activities.Create(r.Context(), actor, in)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, APIResponse{Data: activity, Message: "Activity recorded successfully"})
}

func (h *ActivityHandler) ApproveActivity(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	var req ApproveRequest
	if r.Body != nil {
		// Notes are optional; an empty body is fine.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	activity, transaction, err := h.activities.Approve(r.Context(), actor, chi.URLParam(r, "activityID"), req.Notes)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, APIResponse{
		Data: map[string]any{
			"activity":    activity,
			"transaction": transaction,
		},
		Message: "Activity verified and recorded",
	})
}

func (h *ActivityHandler) GetVerificationLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.activities.VerificationLog(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, APIResponse{Data: entries})
}
