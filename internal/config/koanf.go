// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/recdash/config.yaml",
	"/etc/recdash/config.yml",
}

const (
	// ConfigPathEnvVar overrides the config file path.
	ConfigPathEnvVar = "CONFIG_PATH"

	// DotEnvPathEnvVar overrides the .env file path.
	DotEnvPathEnvVar = "DOTENV_PATH"
)

// sliceConfigPaths are keys that accept comma-separated environment values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8501,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Catalog: CatalogConfig{
			Path:              "clean_data.csv",
			Format:            CatalogFormatAuto,
			Delimiter:         ",",
			MaxRating:         5,
			MaxReportedErrors: 100,
			Watch:             false,
			WatchDebounce:     500 * time.Millisecond,
			ReloadLimit:       6,
			BreakerFailures:   5,
			BreakerCooldown:   30 * time.Second,
		},
		Recommend: RecommendConfig{
			TopRatedK:           8,
			CollaborativeK:      6,
			ContentK:            6,
			HybridK:             5,
			MaxK:                50,
			Neighbors:           20,
			Similarity:          "cosine",
			Shrinkage:           0,
			MinCommonItems:      1,
			MinSimilarity:       0,
			ContentWeight:       0.5,
			CollaborativeWeight: 0.5,
			HistoryLimit:        5,
			PlaceholderImage:    "https://via.placeholder.com/200x200?text=No+Image",
			RequestTimeout:      10 * time.Second,
			CacheEnabled:        true,
			CacheTTL:            5 * time.Minute,
			CacheMaxEntries:     1000,
			TrainingTimeout:     5 * time.Minute,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf builds the configuration from defaults, the optional config
// file and the environment, then validates it.
func LoadWithKoanf() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// CATALOG_PATH -> catalog.path, HTTP_PORT -> server.port, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv populates the process environment from a .env file. Variables
// already set in the environment are left untouched. A missing default .env
// is not an error; a missing DOTENV_PATH is.
func loadDotEnv() error {
	path := os.Getenv(DotEnvPathEnvVar)
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Catalog
	"catalog_path":                "catalog.path",
	"catalog_format":              "catalog.format",
	"catalog_delimiter":           "catalog.delimiter",
	"catalog_max_rating":          "catalog.max_rating",
	"catalog_max_reported_errors": "catalog.max_reported_errors",
	"catalog_watch":               "catalog.watch",
	"catalog_watch_debounce":      "catalog.watch_debounce",
	"catalog_reload_limit":        "catalog.reload_limit",
	"catalog_breaker_failures":    "catalog.breaker_failures",
	"catalog_breaker_cooldown":    "catalog.breaker_cooldown",

	// Recommend
	"recommend_top_rated_k":          "recommend.top_rated_k",
	"recommend_collaborative_k":      "recommend.collaborative_k",
	"recommend_content_k":            "recommend.content_k",
	"recommend_hybrid_k":             "recommend.hybrid_k",
	"recommend_max_k":                "recommend.max_k",
	"recommend_neighbors":            "recommend.neighbors",
	"recommend_similarity":           "recommend.similarity",
	"recommend_shrinkage":            "recommend.shrinkage",
	"recommend_min_common_items":     "recommend.min_common_items",
	"recommend_min_similarity":       "recommend.min_similarity",
	"recommend_content_weight":       "recommend.content_weight",
	"recommend_collaborative_weight": "recommend.collaborative_weight",
	"recommend_history_limit":        "recommend.history_limit",
	"recommend_placeholder_image":    "recommend.placeholder_image",
	"recommend_request_timeout":      "recommend.request_timeout",
	"recommend_cache_enabled":        "recommend.cache_enabled",
	"recommend_cache_ttl":            "recommend.cache_ttl",
	"recommend_cache_max_entries":    "recommend.cache_max_entries",
	"recommend_training_timeout":     "recommend.training_timeout",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path, or
// "" to skip it.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
