package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the calculator endpoints under /calculator. Session
// endpoints are only mounted when sessions is non-nil.
func RegisterRoutes(r chi.Router, sessions *SessionHandler) {
	r.Route("/calculator", func(r chi.Router) {
		r.Post("/add", Add)
		r.Post("/subtract", Subtract)
		r.Post("/multiply", Multiply)
		r.Post("/divide", Divide)
		r.Post("/chain", Chain)

		if sessions == nil {
			return
		}
		r.Get("/tape", sessions.RecentTape)
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessions.Create)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", sessions.Get)
				r.Delete("/", sessions.Delete)
				r.Post("/keys", sessions.Keys)
				r.Get("/tape", sessions.SessionTape)
			})
		})
	})
}
