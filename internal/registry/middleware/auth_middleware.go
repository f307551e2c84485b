package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bluecarbonmrv/registry/internal/registry/app"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const actorContextKey = ContextKey("authenticatedActor")

// Auth creates a middleware that resolves the bearer token to an actor and
// threads it through the request context. No global session state exists;
// every request carries its own identity.
func Auth(auth *app.AuthService, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WarnContext(r.Context(), "Authorization header missing")
				unauthorized(w)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.WarnContext(r.Context(), "Invalid Authorization header format")
				unauthorized(w)
				return
			}

			user, err := auth.CurrentUser(r.Context(), parts[1])
			if err != nil {
				logger.WarnContext(r.Context(), "Token resolution failed", "error", err)
				unauthorized(w)
				return
			}

			actor := app.Actor{
				ID:          user.ID,
				Role:        user.Role,
				Wallet:      user.Wallet,
				Permissions: user.Permissions,
			}
			ctx := context.WithValue(r.Context(), actorContextKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the authenticated actor, if any.
func ActorFromContext(ctx context.Context) (app.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(app.Actor)
	return actor, ok
}

// BearerToken extracts the raw token from the Authorization header, used by
// logout to revoke its own session.
func BearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
}
