// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights defines the hybrid blend. Weights are normalized at runtime,
	// so they don't need to sum to 1.0.
	Weights HybridWeights `json:"weights"`

	// Training contains training parameters.
	Training TrainingConfig `json:"training"`

	// Cache controls memoization of ranking results.
	Cache CacheConfig `json:"cache"`
}

// HybridWeights defines the contribution of each signal to the hybrid blend.
type HybridWeights struct {
	Content       float64 `json:"content"`
	Collaborative float64 `json:"collaborative"`
}

// Normalize returns a copy with weights summing to 1.0. All-zero weights
// become an even split.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w HybridWeights) Normalize() HybridWeights {
	sum := w.Content + w.Collaborative
	if sum == 0 {
		return HybridWeights{Content: 0.5, Collaborative: 0.5}
	}
	return HybridWeights{
		Content:       w.Content / sum,
		Collaborative: w.Collaborative / sum,
	}
}

// TrainingConfig contains training parameters.
type TrainingConfig struct {
	// Timeout bounds one full training pass over all algorithms.
	Timeout time.Duration `json:"timeout"`
}

// CacheConfig controls the ranking result cache. The cache is cleared
// whenever a new model version is trained.
type CacheConfig struct {
	Enabled    bool          `json:"enabled"`
	TTL        time.Duration `json:"ttl"`
	MaxEntries int           `json:"max_entries"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Weights: HybridWeights{
			Content:       0.5,
			Collaborative: 0.5,
		},
		Training: TrainingConfig{
			Timeout: 5 * time.Minute,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 1000,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Weights.Content < 0 || c.Weights.Collaborative < 0 {
		return fmt.Errorf("hybrid weights must be non-negative")
	}
	if c.Training.Timeout <= 0 {
		return fmt.Errorf("training timeout must be positive")
	}
	if c.Cache.Enabled && (c.Cache.TTL <= 0 || c.Cache.MaxEntries <= 0) {
		return fmt.Errorf("cache ttl and max entries must be positive when the cache is enabled")
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
