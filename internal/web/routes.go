package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/fras/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	facesHandler := handlers.NewFacesHandler(s.deps.Enroller, s.logger)
	statusHandler := handlers.NewStatusHandler(s.deps.Board)

	s.router.Get("/", handlers.Home)

	s.router.Route("/api/v0", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)

		// Enrollment
		r.Post("/add", facesHandler.Add)
		r.Post("/add_api", facesHandler.AddAPI)
		r.Post("/remove", facesHandler.Remove)

		// Recognition status
		r.Get("/run", statusHandler.Run)

		if s.deps.Labels != nil {
			r.Get("/labels", handlers.NewLabelsHandler(s.deps.Labels, s.logger).List)
		}
	})
}
