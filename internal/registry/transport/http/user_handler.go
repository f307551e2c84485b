package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bluecarbonmrv/registry/internal/registry/app"
	"github.com/bluecarbonmrv/registry/internal/registry/domain"
	"github.com/bluecarbonmrv/registry/internal/registry/repository"
)

// UserHandler handles HTTP requests for the user collection.
type UserHandler struct {
	users  *app.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *app.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger.With("handler", "users")}
}

// RegisterPublicRoutes registers the read endpoints.
func (h *UserHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/users", h.ListUsers)
	r.Get("/users/{userID}", h.GetUser)
}

// RegisterProtectedRoutes registers the mutating endpoints.
func (h *UserHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/users", h.CreateUser)
	r.Patch("/users/{userID}", h.UpdateUser)
}

// ListUsers returns a paginated user listing, optionally filtered by role.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter := repository.UserFilter{Role: domain.Role(r.URL.Query().Get("role"))}
	users, err := h.users.List(r.Context(), filter)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	page, limit := parsePagination(r)
	pageItems, pagination := paginate(users, page, limit)
	respondWithJSON(w, http.StatusOK, PaginatedResponse{Data: pageItems, Pagination: pagination})
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, APIResponse{Data: user})
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in app.UserCreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	user, err := h.users.Create(r.Context(), in)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, APIResponse{Data: user, Message: "User created successfully"})
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var in app.UserUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	user, err := h.users.Update(r.Context(), chi.URLParam(r, "userID"), in)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, APIResponse{Data: user, Message: "User updated successfully"})
}
