/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/weeks/*       Week management, per-week tasks and statistics
  /api/tasks/*       Task mutation by ID, bulk delete
  /api/statistics    Date-range statistics
  /api/series        Metric series for charts
  /api/settings      Global pay configuration

SECURITY NOTE:
  No authentication middleware; this serves a single-user local
  frontend.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/weeks", func(r chi.Router) {
			r.Get("/", h.ListWeeks)
			r.Post("/", h.CreateWeek)
			r.Get("/{id}", h.GetWeek)
			r.Put("/{id}", h.UpdateWeek)
			r.Delete("/{id}", h.DeleteWeek)
			r.Get("/{id}/tasks", h.ListTasks)
			r.Post("/{id}/tasks", h.CreateTask)
			r.Get("/{id}/statistics", h.WeekStatistics)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Put("/{id}", h.UpdateTask)
			r.Delete("/{id}", h.DeleteTask)
			r.Post("/delete", h.BulkDeleteTasks)
		})

		r.Get("/statistics", h.RangeStatistics)
		r.Get("/series", h.Series)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Put("/", h.UpdateSettings)
		})
	})

	return r
}
