// Package api exposes the engine facade over a JSON HTTP surface. The engine
// itself has no I/O; everything here is collaborator-side plumbing.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"vvengine/adapters/stats/tolerance"
	"vvengine/app"
	"vvengine/internal"
)

// Server wires the engine facade behind a chi router
type Server struct {
	router    *chi.Mux
	engine    *app.EngineService
	tolerance *tolerance.Calculator
	logger    *internal.Logger
}

// NewServer creates the API server with default engine wiring
func NewServer(logger *internal.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		engine:    app.NewEngineService(),
		tolerance: tolerance.NewCalculator(),
		logger:    logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/attribute/sample-size", s.handleAttributeSampleSize)
		r.Post("/attribute/sweep", s.handleAttributeSweep)
		r.Post("/tolerance/factors", s.handleToleranceFactors)
		r.Post("/tolerance/analyze", s.handleToleranceAnalyze)
		r.Post("/pipeline/analyze", s.handlePipelineAnalyze)
		r.Post("/reliability/zero-failure", s.handleZeroFailure)
		r.Post("/reliability/acceleration", s.handleAcceleration)
	})
}
