package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bluecarbonmrv/registry/internal/registry/app"
	"github.com/bluecarbonmrv/registry/internal/registry/middleware"
)

// Handlers bundles the route registrars for the router.
type Handlers struct {
	Auth       *AuthHandler
	Users      *UserHandler
	Projects   *ProjectHandler
	Activities *ActivityHandler
	Credits    *CreditHandler
	Reports    *ReportHandler
}

// NewRouter assembles the chi router: operational endpoints at the root,
// the API under /api/v1 with read routes public and mutating routes behind
// the auth middleware.
func NewRouter(h Handlers, auth *app.AuthService, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(httpLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(PrometheusMetricsMiddleware)
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Group(func(public chi.Router) {
			h.Auth.RegisterPublicRoutes(public)
			h.Users.RegisterPublicRoutes(public)
			h.Projects.RegisterPublicRoutes(public)
			h.Activities.RegisterPublicRoutes(public)
		})

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.Auth(auth, logger))
			h.Auth.RegisterProtectedRoutes(protected)
			h.Users.RegisterProtectedRoutes(protected)
			h.Projects.RegisterProtectedRoutes(protected)
			h.Activities.RegisterProtectedRoutes(protected)
			h.Credits.RegisterProtectedRoutes(protected)
			h.Reports.RegisterProtectedRoutes(protected)
		})
	})

	return r
}

// httpLogger logs every request with its status and latency.
func httpLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			requestID := chiMiddleware.GetReqID(r.Context())

			next.ServeHTTP(ww, r)

			logger.LogAttrs(r.Context(), slog.LevelInfo, "HTTP request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", requestID),
			)
		}
		return http.HandlerFunc(fn)
	}
}
