// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

// Package api serves the recommendation dashboard over HTTP with the Chi
// router. Every response uses the models.APIResponse envelope.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/recdash/internal/middleware"
)

// slowRequest is the access log threshold for warn-level request lines.
const slowRequest = 2 * time.Second

// Router wires handlers and middleware into a Chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for h.
func NewRouter(h *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: h, chiMiddleware: mw}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(slowRequest))
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(router.handler.NotFound)
	r.MethodNotAllowed(router.handler.MethodNotAllowed)

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom("health", RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// ========================
	// Core API Endpoints
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/top-rated", router.handler.TopRated)
			r.Get("/content", router.handler.ContentBased)
			r.Get("/content/{itemID}", router.handler.ContentBased)
			r.Get("/collaborative/{userID}", router.handler.Collaborative)
			r.Get("/hybrid/{userID}", router.handler.Hybrid)
		})

		r.Get("/users", router.handler.Users)
		r.Get("/users/{userID}/history", router.handler.UserHistory)
		r.Get("/users/{userID}/strategies", router.handler.UserStrategies)
		r.Get("/items", router.handler.Items)

		r.Get("/catalog/status", router.handler.CatalogStatus)
		r.With(router.chiMiddleware.RateLimitCustom("reload", RateLimitReload)).
			Post("/catalog/reload", router.handler.CatalogReload)
	})

	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// API Documentation
	// ========================
	// Serves the spec registered by the docs package, which cmd/server
	// imports for its side effect.
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
