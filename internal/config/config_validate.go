// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/recdash/internal/logging"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP read and write timeouts must be positive")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if strings.TrimSpace(c.Catalog.Path) == "" {
		return fmt.Errorf("CATALOG_PATH is required")
	}
	switch c.Catalog.Format {
	case CatalogFormatAuto, CatalogFormatCSV, CatalogFormatDuckDB:
	default:
		return fmt.Errorf("CATALOG_FORMAT must be one of auto, csv, duckdb, got %q", c.Catalog.Format)
	}
	if len([]rune(c.Catalog.Delimiter)) != 1 {
		return fmt.Errorf("CATALOG_DELIMITER must be a single character, got %q", c.Catalog.Delimiter)
	}
	if c.Catalog.MaxRating <= 0 {
		return fmt.Errorf("CATALOG_MAX_RATING must be positive, got %g", c.Catalog.MaxRating)
	}
	if c.Catalog.MaxReportedErrors < 0 {
		return fmt.Errorf("CATALOG_MAX_REPORTED_ERRORS must not be negative")
	}
	if c.Catalog.Watch && c.Catalog.WatchDebounce < 0 {
		return fmt.Errorf("CATALOG_WATCH_DEBOUNCE must not be negative")
	}
	if c.Catalog.Watch && c.Catalog.ReloadLimit < 1 {
		return fmt.Errorf("CATALOG_RELOAD_LIMIT must be at least 1, got %d", c.Catalog.ReloadLimit)
	}
	if c.Catalog.BreakerFailures < 1 {
		return fmt.Errorf("CATALOG_BREAKER_FAILURES must be at least 1, got %d", c.Catalog.BreakerFailures)
	}
	if c.Catalog.BreakerCooldown <= 0 {
		return fmt.Errorf("CATALOG_BREAKER_COOLDOWN must be positive")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.MaxK < 1 {
		return fmt.Errorf("RECOMMEND_MAX_K must be at least 1, got %d", r.MaxK)
	}
	defaults := []struct {
		name string
		k    int
	}{
		{"RECOMMEND_TOP_RATED_K", r.TopRatedK},
		{"RECOMMEND_COLLABORATIVE_K", r.CollaborativeK},
		{"RECOMMEND_CONTENT_K", r.ContentK},
		{"RECOMMEND_HYBRID_K", r.HybridK},
	}
	for _, d := range defaults {
		if d.k < 1 || d.k > r.MaxK {
			return fmt.Errorf("%s must be between 1 and RECOMMEND_MAX_K (%d), got %d", d.name, r.MaxK, d.k)
		}
	}
	if r.Neighbors < 1 {
		return fmt.Errorf("RECOMMEND_NEIGHBORS must be at least 1, got %d", r.Neighbors)
	}
	if r.Similarity != "cosine" && r.Similarity != "pearson" {
		return fmt.Errorf("RECOMMEND_SIMILARITY must be cosine or pearson, got %q", r.Similarity)
	}
	if r.Shrinkage < 0 {
		return fmt.Errorf("RECOMMEND_SHRINKAGE must not be negative")
	}
	if r.MinCommonItems < 1 {
		return fmt.Errorf("RECOMMEND_MIN_COMMON_ITEMS must be at least 1")
	}
	if r.MinSimilarity < -1 || r.MinSimilarity >= 1 {
		return fmt.Errorf("RECOMMEND_MIN_SIMILARITY must be in [-1, 1), got %g", r.MinSimilarity)
	}
	if r.ContentWeight < 0 || r.CollaborativeWeight < 0 {
		return fmt.Errorf("hybrid weights must not be negative")
	}
	if r.ContentWeight+r.CollaborativeWeight == 0 {
		return fmt.Errorf("at least one hybrid weight must be positive")
	}
	if r.HistoryLimit < 1 {
		return fmt.Errorf("RECOMMEND_HISTORY_LIMIT must be at least 1")
	}
	if r.RequestTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_REQUEST_TIMEOUT must be positive")
	}
	if r.CacheEnabled && (r.CacheTTL <= 0 || r.CacheMaxEntries < 1) {
		return fmt.Errorf("RECOMMEND_CACHE_TTL and RECOMMEND_CACHE_MAX_ENTRIES must be positive when the cache is enabled")
	}
	if r.TrainingTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_TRAINING_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1 when rate limiting is enabled")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
