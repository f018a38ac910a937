package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)

			// Device registry endpoints
			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)
				r.Post("/", s.handleAdoptDevice)
				r.Get("/eui/{devEui}", s.handleGetDeviceByEUI)
				r.Get("/remote/{devEui}", s.handlePeekRemote)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetDevice)
					r.Patch("/", s.handleReviseDevice)
					r.Delete("/", s.handleDeleteDevice)
				})
			})

			// Downlink command endpoint
			r.Post("/commands/{devEui}", s.handleSendCommand)

			// Telemetry endpoints
			r.Route("/readings/{devEui}", func(r chi.Router) {
				r.Get("/", s.handleListReadings)
				r.Get("/range", s.handleReadingsRange)
			})

			// Organization endpoints
			r.Route("/organizations", func(r chi.Router) {
				r.Get("/", s.handleListOrganizations)
				r.With(s.requireAdmin).Post("/", s.handleCreateOrganization)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetOrganization)
					r.With(s.requireAdmin).Put("/", s.handleUpdateOrganization)
					r.With(s.requireAdmin).Delete("/", s.handleDeleteOrganization)
				})
			})

			// User management (admin only)
			r.Route("/users", func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Get("/", s.handleListUsers)
				r.Post("/", s.handleCreateUser)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetUser)
					r.Patch("/", s.handleUpdateUser)
					r.Delete("/", s.handleDeleteUser)
				})
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"version": s.version,
	}
	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err != nil {
			resp["status"] = "degraded"
			resp["database"] = "unavailable"
		} else {
			resp["database"] = "ok"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
