// internal/app/fakeapi/routes.go
package fakeapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes mounts the Dojo REST surface.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.inject)

	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/login", s.handleLogin)
		ar.Post("/register", s.handleRegister)

		ar.Group(func(pr chi.Router) {
			pr.Use(s.requireUser)
			pr.Get("/me", s.handleMe)
			pr.Put("/me", s.handleUpdateMe)
		})
	})

	r.Route("/groups", func(gr chi.Router) {
		gr.Get("/", s.handleListGroups)

		gr.Group(func(pr chi.Router) {
			pr.Use(s.requireUser)
			pr.Post("/", s.handleCreateGroup)
			pr.Post("/{id}/join", s.handleJoinGroup)
		})
	})

	r.With(s.requireUser).Get("/leaderboard/group/{id}", s.handleGroupLeaderboard)

	r.Route("/challenges", func(cr chi.Router) {
		// Feedback is reachable without a token.
		cr.Get("/feedback/{userID}", s.handleFeedback)

		cr.Group(func(pr chi.Router) {
			pr.Use(s.requireUser)
			pr.Post("/", s.handleCreateChallenge)
			pr.Get("/group/{id}/previous", s.handlePreviousChallenges)
		})
	})

	return r
}
