// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolateEnv clears the environment and runs from an empty directory so no
// stray config.yaml or .env is picked up.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	os.Clearenv()
	t.Chdir(dir)
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Recommend.TopRatedK != 8 || cfg.Recommend.CollaborativeK != 6 ||
		cfg.Recommend.ContentK != 6 || cfg.Recommend.HybridK != 5 {
		t.Errorf("unexpected default k values: %+v", cfg.Recommend)
	}
	if cfg.Catalog.MaxRating != 5 {
		t.Errorf("Catalog.MaxRating = %g, want 5", cfg.Catalog.MaxRating)
	}
	if cfg.Server.Addr() != "0.0.0.0:8501" {
		t.Errorf("Server.Addr() = %q", cfg.Server.Addr())
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"CATALOG_PATH", "catalog.path"},
		{"HTTP_PORT", "server.port"},
		{"RECOMMEND_NEIGHBORS", "recommend.neighbors"},
		{"LOG_LEVEL", "logging.level"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	isolateEnv(t)
	t.Setenv("CATALOG_PATH", "/data/ratings.csv")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("RECOMMEND_SIMILARITY", "pearson")
	t.Setenv("RECOMMEND_CONTENT_WEIGHT", "0.7")
	t.Setenv("CATALOG_WATCH_DEBOUNCE", "2s")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Catalog.Path != "/data/ratings.csv" {
		t.Errorf("Catalog.Path = %q", cfg.Catalog.Path)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Recommend.Similarity != "pearson" {
		t.Errorf("Recommend.Similarity = %q, want pearson", cfg.Recommend.Similarity)
	}
	if cfg.Recommend.ContentWeight != 0.7 {
		t.Errorf("Recommend.ContentWeight = %g, want 0.7", cfg.Recommend.ContentWeight)
	}
	if cfg.Catalog.WatchDebounce != 2*time.Second {
		t.Errorf("Catalog.WatchDebounce = %v, want 2s", cfg.Catalog.WatchDebounce)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "http://b.example" {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Recommend.HybridK != 5 {
		t.Errorf("Recommend.HybridK = %d, want default 5", cfg.Recommend.HybridK)
	}
}

func TestLoadWithKoanfConfigFileAndEnvOverride(t *testing.T) {
	dir := isolateEnv(t)

	content := `
catalog:
  path: "/srv/catalog.parquet"
  format: "duckdb"
recommend:
  neighbors: 5
logging:
  level: "warn"
`
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Catalog.Format != CatalogFormatDuckDB {
		t.Errorf("Catalog.Format = %q, want duckdb", cfg.Catalog.Format)
	}
	if cfg.Recommend.Neighbors != 5 {
		t.Errorf("Recommend.Neighbors = %d, want 5", cfg.Recommend.Neighbors)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug (env beats file)", cfg.Logging.Level)
	}
}

func TestLoadWithKoanfDotEnv(t *testing.T) {
	dir := isolateEnv(t)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CATALOG_PATH=from-dotenv.csv\nHTTP_PORT=7000\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("HTTP_PORT", "7100")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Catalog.Path != "from-dotenv.csv" {
		t.Errorf("Catalog.Path = %q, want from-dotenv.csv", cfg.Catalog.Path)
	}
	if cfg.Server.Port != 7100 {
		t.Errorf("Server.Port = %d, want 7100 (process env wins over .env)", cfg.Server.Port)
	}
}

func TestLoadWithKoanfMissingExplicitDotEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv(DotEnvPathEnvVar, "/nonexistent/.env")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected error for missing explicit .env file")
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	isolateEnv(t)
	t.Setenv("RECOMMEND_SIMILARITY", "jaccard")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected validation error for unsupported similarity")
	}
}
