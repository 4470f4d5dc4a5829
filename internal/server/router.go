package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
)

// NewRouter builds the HTTP surface. A nil sessions handler serves only the
// stateless calculator endpoints.
func NewRouter(sessions *calculator.SessionHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)
	r.Handle("/metrics", observability.PrometheusHandler())

	calculator.RegisterRoutes(r, sessions)

	return r
}
