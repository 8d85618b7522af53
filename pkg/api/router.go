// Package api provides the FastFile REST API: authentication, account
// management, file operations, and link sharing over a chi router.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fastfile/fastfile/internal/logger"
	"github.com/fastfile/fastfile/pkg/api/auth"
	"github.com/fastfile/fastfile/pkg/api/handlers"
	apiMiddleware "github.com/fastfile/fastfile/pkg/api/middleware"
	"github.com/fastfile/fastfile/pkg/files"
	"github.com/fastfile/fastfile/pkg/links"
	"github.com/fastfile/fastfile/pkg/users"
)

// Deps bundles the services the router exposes.
type Deps struct {
	Users *users.Service
	Files *files.Service
	Links *links.Service

	// DB backs the readiness probe. Optional.
	DB handlers.Pinger
}

// NewRouter creates and configures the chi router with all middleware and routes.
//
// Routes:
//   - GET /health, /health/ready - probes (unauthenticated)
//   - GET /metrics - Prometheus metrics (unauthenticated)
//   - POST /api/v1/auth/register, /login, /refresh - account entry points
//   - GET /api/v1/auth/me - current user
//   - GET/DELETE /api/v1/users/me - profile and account deletion
//   - /api/v1/files* - upload, list, search, download, mkdir, delete
//   - /api/v1/links* - link minting, lookup, viewers, download, deletion
func NewRouter(config Config, deps Deps, jwtService *auth.JWTService, metrics *Metrics) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	healthHandler := handlers.NewHealthHandler(deps.DB)

	// Probes and metrics - unauthenticated
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	authHandler := handlers.NewAuthHandler(deps.Users, jwtService)
	userHandler := handlers.NewUserHandler(deps.Users)
	fileHandler := handlers.NewFileHandler(deps.Files, config.MaxUploadBytes)
	linkHandler := handlers.NewLinkHandler(deps.Links)

	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes - registration and token issuance are public
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(apiMiddleware.JWTAuth(jwtService))
				r.Get("/me", authHandler.Me)
			})
		})

		// Everything else requires a valid access token
		r.Group(func(r chi.Router) {
			r.Use(apiMiddleware.JWTAuth(jwtService))

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", userHandler.Profile)
				r.Delete("/", userHandler.Delete)
			})

			r.Route("/files", func(r chi.Router) {
				r.Post("/", fileHandler.Upload)
				r.Get("/", fileHandler.List)
				r.Delete("/", fileHandler.Delete)
				r.Get("/search", fileHandler.Search)
				r.Get("/download", fileHandler.Download)
				r.Post("/directories", fileHandler.Mkdir)
			})

			r.Route("/links", func(r chi.Router) {
				r.Post("/", linkHandler.Create)
				r.Get("/", linkHandler.List)
				r.Get("/shared-with-me", linkHandler.SharedWithMe)

				r.Route("/{token}", func(r chi.Router) {
					r.Get("/", linkHandler.Get)
					r.Delete("/", linkHandler.Delete)
					r.Get("/download", linkHandler.Download)
					r.Put("/viewers", linkHandler.UpdateViewers)
				})
			})
		})
	})

	return r
}

// isHealthPath returns true if the request path is a healthcheck endpoint.
func isHealthPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/") || path == "/metrics"
}

// requestLogger is a custom middleware that logs requests using the internal logger.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level): method, path, status, duration
//   - Healthcheck and metrics requests are logged at DEBUG level to reduce noise
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		// Wrap response writer to capture status code
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)

		logArgs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
		}

		if isHealthPath(r.URL.Path) {
			logger.Debug("API request completed", logArgs...)
		} else {
			logger.Info("API request completed", logArgs...)
		}
	})
}
