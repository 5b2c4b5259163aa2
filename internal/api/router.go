// Package api assembles the HTTP router for the POS Insight service.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/posinsight/posinsight/internal/api/handlers"
	"github.com/posinsight/posinsight/internal/api/middleware"
	"github.com/posinsight/posinsight/internal/web"
)

// NewRouter creates the HTTP router with all API routes.
func NewRouter(h *handlers.Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Logger)
	r.Use(middleware.Telemetry)
	r.Use(middleware.NewAPIKeyAuth().Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.Chat)
		r.Post("/chat/stream", h.ChatStream)

		r.Post("/report", h.Report)
		r.Get("/report/{reportID}", h.GetReport)

		// Per-session conversation store
		r.Route("/session/{sessionID}", func(r chi.Router) {
			r.Post("/init", h.SessionInit)
			r.Post("/message", h.SessionMessage)
			r.Get("/messages", h.SessionMessages)
			r.Get("/info", h.SessionInfo)
			r.Post("/clear", h.SessionClear)
			r.Put("/metadata", h.SessionMetadata)
		})
	})

	// Static chat page
	r.Get("/", web.Index)

	return r
}
