// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package recommend

import (
	"math"
	"testing"
	"time"
)

func TestHybridWeights_Normalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   HybridWeights
		want HybridWeights
	}{
		{name: "already normalized", in: HybridWeights{0.5, 0.5}, want: HybridWeights{0.5, 0.5}},
		{name: "scaled", in: HybridWeights{3, 1}, want: HybridWeights{0.75, 0.25}},
		{name: "content only", in: HybridWeights{2, 0}, want: HybridWeights{1, 0}},
		{name: "all zero", in: HybridWeights{}, want: HybridWeights{0.5, 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.in.Normalize()
			if math.Abs(got.Content-tt.want.Content) > 1e-12 || math.Abs(got.Collaborative-tt.want.Collaborative) > 1e-12 {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "negative content weight", modify: func(c *Config) { c.Weights.Content = -0.1 }, wantErr: true},
		{name: "negative collaborative weight", modify: func(c *Config) { c.Weights.Collaborative = -1 }, wantErr: true},
		{name: "zero timeout", modify: func(c *Config) { c.Training.Timeout = 0 }, wantErr: true},
		{name: "custom timeout", modify: func(c *Config) { c.Training.Timeout = time.Second }},
		{name: "zero cache ttl", modify: func(c *Config) { c.Cache.TTL = 0 }, wantErr: true},
		{name: "zero cache size", modify: func(c *Config) { c.Cache.MaxEntries = 0 }, wantErr: true},
		{name: "cache disabled", modify: func(c *Config) { c.Cache = CacheConfig{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Weights.Content = 9
	if cfg.Weights.Content == 9 {
		t.Error("Clone() shares state with the original")
	}
}
