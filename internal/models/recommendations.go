// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package models

import (
	"time"

	"github.com/tomtom215/recdash/internal/catalog"
	"github.com/tomtom215/recdash/internal/recommend"
)

// ProductCard is an item as the dashboard displays it. ImageURL is never
// empty; items without an image carry the configured placeholder.
type ProductCard struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Brand       string             `json:"brand,omitempty"`
	Category    string             `json:"category,omitempty"`
	Tags        []string           `json:"tags,omitempty"`
	Rating      float64            `json:"rating"`
	ReviewCount int                `json:"review_count"`
	Popularity  float64            `json:"popularity"`
	ImageURL    string             `json:"image_url"`
	Score       *float64           `json:"score,omitempty"`
	Scores      map[string]float64 `json:"scores,omitempty"`
}

// RecommendationResponse is the payload of every recommendation endpoint.
//
// Degraded is set when hybrid fell back to content similarity.
// Fallback names the strategy actually served when the requested one could
// not run for this user (collaborative falling back to rating).
type RecommendationResponse struct {
	Strategy        string        `json:"strategy"`
	K               int           `json:"k"`
	Items           []ProductCard `json:"items"`
	Reference       *ProductCard  `json:"reference,omitempty"`
	Degraded        bool          `json:"degraded"`
	DegradedReason  string        `json:"degraded_reason,omitempty"`
	Fallback        string        `json:"fallback,omitempty"`
	CatalogLoadedAt time.Time     `json:"catalog_loaded_at"`
}

// UsersResponse lists selectable users, guest first.
type UsersResponse struct {
	Guest string   `json:"guest"`
	Users []string `json:"users"`
}

// StrategiesResponse lists the strategies a user can pick, default first.
type StrategiesResponse struct {
	UserID     string   `json:"user_id"`
	Strategies []string `json:"strategies"`
}

// HistoryEntry is one row of a user's recent activity.
type HistoryEntry struct {
	Item       ProductCard `json:"item"`
	UserRating float64     `json:"user_rating"`
	Line       int         `json:"line"`
}

// HistoryResponse is a user's recent activity, oldest first.
type HistoryResponse struct {
	UserID  string         `json:"user_id"`
	Entries []HistoryEntry `json:"entries"`
}

// ItemsResponse is a catalog search result.
type ItemsResponse struct {
	Query string        `json:"query,omitempty"`
	Items []ProductCard `json:"items"`
}

// CatalogStatusResponse reports the loaded catalog and the trained models.
type CatalogStatusResponse struct {
	Source    string                   `json:"source"`
	Loaded    bool                     `json:"loaded"`
	Version   uint64                   `json:"version"`
	LoadedAt  *time.Time               `json:"loaded_at,omitempty"`
	Report    *catalog.LoadReport      `json:"report,omitempty"`
	LastError string                   `json:"last_error,omitempty"`
	Breaker   string                   `json:"breaker"`
	Model     recommend.TrainingStatus `json:"model"`
}

// HealthResponse is served by the liveness and readiness probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Ready   bool          `json:"ready"`
	Uptime  time.Duration `json:"uptime_ns"`
	Catalog string        `json:"catalog,omitempty"`
}
