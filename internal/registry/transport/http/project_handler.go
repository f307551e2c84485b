package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bluecarbonmrv/registry/internal/registry/app"
	"github.com/bluecarbonmrv/registry/internal/registry/domain"
	"github.com/bluecarbonmrv/registry/internal/registry/middleware"
	"github.com/bluecarbonmrv/registry/internal/registry/repository"
)

// ProjectHandler handles HTTP requests for projects and the map view.
type ProjectHandler struct {
	projects *app.ProjectService
	logger   *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projects *app.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger.With("handler", "projects")}
}

// RegisterPublicRoutes registers the read endpoints.
func (h *ProjectHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/projects", h.ListProjects)
	r.Get("/projects/{projectID}", h.GetProject)
	r.Get("/maps/projects.geojson", h.GetProjectsGeoJSON)
}

// RegisterProtectedRoutes registers the mutating endpoints.
func (h *ProjectHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/projects", h.CreateProject)
	r.Patch("/projects/{projectID}", h.UpdateProject)
	r.Post("/projects/{projectID}/verify", h.VerifyProject)
}

// ListProjects returns a paginated project listing with status/type/creator
// filters.
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.ProjectFilter{
		Status:    domain.ProjectStatus(q.Get("status")),
		Type:      domain.ProjectType(q.Get("type")),
		CreatedBy: q.Get("createdBy"),
	}
	projects, err := h.projects.List(r.Context(), filter)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	page, limit := parsePagination(r)
	pageItems, pagination := paginate(projects, page, limit)
	respondWithJSON(w, http.StatusOK, PaginatedResponse{Data: pageItems, Pagination: pagination})
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.Get(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, APIResponse{Data: project})
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	var in app.ProjectCreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	project, err := h.projects.Create(r.Context(), actor, in)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, APIResponse{Data: project, Message: "Project created successfully"})
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	var in app.ProjectUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	project, err := h.projects.Update(r.Context(), actor, chi.URLParam(r, "projectID"), in)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, APIResponse{Data: project, Message: "Project updated successfully"})
}

func (h *ProjectHandler) VerifyProject(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	project, err := h.projects.Verify(r.Context(), actor, chi.URLParam(r, "projectID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, APIResponse{Data: project, Message: "Project verified successfully"})
}

// GetProjectsGeoJSON returns all projects as a GeoJSON FeatureCollection.
func (h *ProjectHandler) GetProjectsGeoJSON(w http.ResponseWriter, r *http.Request) {
	fc, err := h.projects.GeoJSON(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, APIResponse{Data: fc})
}
