// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/recdash/internal/catalog"
	"github.com/tomtom215/recdash/internal/config"
	"github.com/tomtom215/recdash/internal/recommend"
)

// HandlerConfig holds request defaults and limits.
type HandlerConfig struct {
	TopRatedK      int
	CollaborativeK int
	ContentK       int
	HybridK        int
	MaxK           int

	HistoryLimit     int
	PlaceholderImage string
	RequestTimeout   time.Duration
}

// HandlerConfigFrom extracts the handler settings from the application config.
func HandlerConfigFrom(cfg *config.Config) HandlerConfig {
	rc := cfg.Recommend
	return HandlerConfig{
		TopRatedK:        rc.TopRatedK,
		CollaborativeK:   rc.CollaborativeK,
		ContentK:         rc.ContentK,
		HybridK:          rc.HybridK,
		MaxK:             rc.MaxK,
		HistoryLimit:     rc.HistoryLimit,
		PlaceholderImage: rc.PlaceholderImage,
		RequestTimeout:   rc.RequestTimeout,
	}
}

// Handler serves the dashboard API.
type Handler struct {
	engine    *recommend.Engine
	store     *catalog.Store
	config    HandlerConfig
	startTime time.Time
}

// NewHandler creates a handler over engine and store.
func NewHandler(engine *recommend.Engine, store *catalog.Store, cfg HandlerConfig) *Handler {
	if cfg.MaxK < 1 {
		cfg.MaxK = 100
	}
	if cfg.HistoryLimit < 1 {
		cfg.HistoryLimit = 5
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	return &Handler{
		engine:    engine,
		store:     store,
		config:    cfg,
		startTime: time.Now(),
	}
}

// NotFound answers unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusNotFound, ErrCodeRouteNotFound, "Route not found", nil)
}

// MethodNotAllowed answers matched routes called with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
}
