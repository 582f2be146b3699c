// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stepsocial/stepsocial/internal/middleware"
)

// NewRouter assembles the chi router for the service.
func NewRouter(handler *Handler) http.Handler {
	cfg := handler.cfg
	r := chi.NewRouter()

	// Global middleware, applied to every route.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if len(cfg.Server.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Route("/api/health", func(r chi.Router) {
		r.Get("/", handler.Health)
	})

	r.Route("/api/auth", func(r chi.Router) {
		// The login handler applies its own per-IP limiter on top of
		// the general API budget.
		if cfg.Server.RateLimitReqs > 0 {
			r.Use(httprate.LimitByIP(cfg.Server.RateLimitReqs, cfg.Server.RateLimitWindow))
		}
		r.Post("/login", handler.Login)
	})

	r.Route("/api/recommendations", func(r chi.Router) {
		if cfg.Server.RateLimitReqs > 0 {
			r.Use(httprate.LimitByIP(cfg.Server.RateLimitReqs, cfg.Server.RateLimitWindow))
		}
		r.Use(middleware.PrometheusMetrics)
		r.Use(handler.jwt.RequireAuth)

		r.Get("/friends", handler.RecommendFriends)
		r.Get("/events", handler.RecommendEvents)
		r.Get("/teachers", handler.RecommendTeachers)
		r.Get("/content", handler.RecommendContent)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
