// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

// Package config loads Recdash configuration.
//
// Values are layered with Koanf, later layers winning:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, or config.yaml in the working directory)
//  3. Environment variables, including those loaded from a .env file
//
// Only environment variables listed in envTransformFunc are read; anything
// else in the environment is ignored.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Recommend RecommendConfig `koanf:"recommend"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// Catalog source formats.
const (
	CatalogFormatAuto   = "auto"
	CatalogFormatCSV    = "csv"
	CatalogFormatDuckDB = "duckdb"
)

// CatalogConfig describes where the ratings table comes from.
type CatalogConfig struct {
	// Path to the catalog file (CSV, TSV or Parquet).
	Path string `koanf:"path"`

	// Format selects the reader: auto, csv or duckdb.
	// auto uses DuckDB for .parquet files and the CSV reader otherwise.
	Format string `koanf:"format"`

	// Delimiter is the CSV field separator. Ignored by the DuckDB reader,
	// which sniffs it.
	Delimiter string `koanf:"delimiter"`

	// MaxRating is the upper bound ratings are clamped to.
	MaxRating float64 `koanf:"max_rating"`

	// MaxReportedErrors caps how many malformed-row errors the load report keeps.
	MaxReportedErrors int `koanf:"max_reported_errors"`

	// Watch reloads the catalog when the file changes.
	Watch bool `koanf:"watch"`

	// WatchDebounce coalesces bursts of write events into one reload.
	WatchDebounce time.Duration `koanf:"watch_debounce"`

	// ReloadLimit caps file-triggered reloads per minute.
	ReloadLimit int `koanf:"reload_limit"`

	// BreakerFailures is how many consecutive read failures open the
	// catalog circuit breaker.
	BreakerFailures int `koanf:"breaker_failures"`

	// BreakerCooldown is how long the breaker stays open before a trial read.
	BreakerCooldown time.Duration `koanf:"breaker_cooldown"`
}

// RecommendConfig holds ranking parameters.
type RecommendConfig struct {
	// Default result counts per strategy when the request does not give k.
	TopRatedK      int `koanf:"top_rated_k"`
	CollaborativeK int `koanf:"collaborative_k"`
	ContentK       int `koanf:"content_k"`
	HybridK        int `koanf:"hybrid_k"`

	// MaxK is the largest k any request may ask for.
	MaxK int `koanf:"max_k"`

	// Neighbors is K for the user-based collaborative filter.
	Neighbors int `koanf:"neighbors"`

	// Similarity is the user similarity metric: cosine or pearson.
	Similarity string `koanf:"similarity"`

	// Shrinkage damps similarities computed from few co-rated items. 0 disables it.
	Shrinkage float64 `koanf:"shrinkage"`

	// MinCommonItems is the number of co-rated items needed to consider a neighbour.
	MinCommonItems int `koanf:"min_common_items"`

	// MinSimilarity is the exclusive lower bound on neighbour similarity.
	MinSimilarity float64 `koanf:"min_similarity"`

	// Hybrid blend weights. Normalized to sum to 1.
	ContentWeight       float64 `koanf:"content_weight"`
	CollaborativeWeight float64 `koanf:"collaborative_weight"`

	// HistoryLimit is the default number of recent interactions returned for a user.
	HistoryLimit int `koanf:"history_limit"`

	// PlaceholderImage is served for items without an image reference.
	PlaceholderImage string `koanf:"placeholder_image"`

	// RequestTimeout bounds a single ranking call.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// Result cache for ranking calls, cleared on every retrain.
	CacheEnabled    bool          `koanf:"cache_enabled"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	CacheMaxEntries int           `koanf:"cache_max_entries"`

	// TrainingTimeout bounds one training pass over all algorithms.
	TrainingTimeout time.Duration `koanf:"training_timeout"`
}

// SecurityConfig holds HTTP hardening settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config for the fields that are configurable.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
