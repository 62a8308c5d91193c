// Package http wires the chi router for the buyer-leads API.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/buyer-leads/internal/infra/http/handlers"
	"github.com/xavierca1/buyer-leads/internal/infra/http/middleware"
)

type RouterDeps struct {
	Logger         logrus.FieldLogger
	Sessions       middleware.SessionVerifier
	Leads          *handlers.LeadHandler
	Imports        *handlers.ImportHandler
	Auth           *handlers.AuthHandler
	Health         *handlers.HealthHandler
	AllowedOrigins []string
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", d.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(30 * time.Second))

		r.Post("/login", d.Auth.Login)
		r.Post("/logout", d.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(d.Sessions))

			r.Get("/buyers", d.Leads.List)
			r.Post("/buyers", d.Leads.Create)
			r.Post("/buyers/import", d.Imports.Import)
			r.Get("/buyers/export", d.Imports.Export)
			r.Get("/buyers/{id}", d.Leads.Get)
			r.Post("/buyers/{id}", d.Leads.Update)
			r.Put("/buyers/{id}", d.Leads.Update)
		})
	})

	return r
}
