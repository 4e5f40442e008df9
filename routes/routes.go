package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/upb/chat-edge/app"
	"github.com/upb/chat-edge/handlers"
)

// ChatPath is the only API endpoint on the public listener
const ChatPath = "/api/chat"

// SetupRoutes configures the public listener: the chat API plus the static
// homepage for every other path and method
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(deps.RequestMiddleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(deps.RequestMiddleware.AccessLog)
	r.Use(deps.RequestMiddleware.Recoverer)

	// The handler answers 405 itself for non-POST methods.
	r.HandleFunc(ChatPath, deps.ChatHandler.HandleChat)

	r.NotFound(handlers.HandleHomepage)
	r.MethodNotAllowed(handlers.HandleHomepage)

	return r
}

// SetupOpsRoutes configures the ops listener: health probes and metrics
func SetupOpsRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Config.Observability.OpsCORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	return r
}
