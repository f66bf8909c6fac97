package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sazzler/api-gateway/app"
	"github.com/sazzler/api-gateway/handlers"
	"github.com/sazzler/api-gateway/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(deps),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	health := handlers.NewHealthHandler(healthChecks(deps), deps.Logger)
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	// API v1 routes: every request passes the authentication gate
	identity := handlers.NewIdentityHandler(deps.Logger)
	r.Route("/api/v1", func(r chi.Router) {
		if deps.Gate != nil {
			r.Use(deps.Gate.Handler)
		}
		r.Get("/me", identity.HandleMe)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}

func allowedOrigins(deps *app.Dependencies) []string {
	if deps.Config != nil && len(deps.Config.Server.CORSAllowedOrigins) > 0 {
		return deps.Config.Server.CORSAllowedOrigins
	}
	return []string{"http://localhost:*", "https://*"}
}

func healthChecks(deps *app.Dependencies) map[string]handlers.HealthCheck {
	checks := map[string]handlers.HealthCheck{}
	if deps.DB != nil {
		checks["database"] = deps.DB.HealthCheck
	}
	if deps.IdentityCache != nil {
		checks["redis"] = deps.IdentityCache.Ping
	}
	return checks
}
