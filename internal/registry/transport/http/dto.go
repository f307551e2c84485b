package http

import (
	"net/http"
	"strconv"
)

// APIResponse is the envelope returned by every endpoint.
type APIResponse struct {
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Pagination is the metadata attached to list responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// PaginatedResponse is the envelope for list endpoints.
type PaginatedResponse struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
	Error      string     `json:"error,omitempty"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse pairs the logged-in user with their session token.
type LoginResponse struct {
	User  any    `json:"user"`
	Token string `json:"token"`
}

// TransferRequest is the credit transfer payload.
type TransferRequest struct {
	To     string  `json:"to" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// ApproveRequest is the activity verification payload.
type ApproveRequest struct {
	Notes string `json:"notes,omitempty"`
}

const (
	defaultPage  = 1
	defaultLimit = 10
)

// parsePagination reads page/limit query parameters with the API defaults.
func parsePagination(r *http.Request) (page, limit int) {
	page = defaultPage
	limit = defaultLimit
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return page, limit
}

// paginate slices items for the requested page and reports the metadata.
// Slicing is (page-1)*limit .. page*limit over the already-filtered list.
func paginate[T any](items []T, page, limit int) ([]T, Pagination) {
	total := len(items)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return items[start:end], Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
