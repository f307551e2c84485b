package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
)

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Default().Error("Failed to write JSON response", "error", err)
		}
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, APIResponse{Error: message})
}

// mapDomainError converts the error taxonomy into HTTP status codes. Every
// failure path resolves to an envelope; nothing is fatal.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondDomainError(w http.ResponseWriter, err error) {
	code := mapDomainError(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		// Internal detail stays in the logs, not the envelope.
		message = "internal server error"
	}
	respondWithError(w, code, message)
}
