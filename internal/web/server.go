// Package web serves the read-only attendance reporting API.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/facegate/canteen/internal/database"
	"github.com/facegate/canteen/internal/web/handlers"
	"github.com/facegate/canteen/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Server represents the reporting web server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
}

// NewServer creates the reporting server. tz is the display timezone for
// rendered timestamps; storage stays in UTC.
func NewServer(store database.AttendanceReader, tz *time.Location, host string, port int) *Server {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(30 * time.Second))
	r.Use(middleware.CORS())

	attendance := handlers.NewAttendanceHandler(store, tz)
	r.Get("/healthz", handlers.HealthCheck)
	r.Route("/api", func(r chi.Router) {
		r.Get("/attendance", attendance.GetByDate)
		r.Get("/attendance.csv", attendance.ExportCSV)
	})

	return &Server{
		router: r,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      r,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting reporting server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down reporting server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
