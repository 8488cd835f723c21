// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package main

import (
	"github.com/rs/zerolog"

	"github.com/tomtom215/recdash/internal/config"
	"github.com/tomtom215/recdash/internal/recommend"
	"github.com/tomtom215/recdash/internal/recommend/algorithms"
)

// initRecommend creates the engine over source and registers every algorithm.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(cfg *config.Config, source recommend.TableSource, logger zerolog.Logger) (*recommend.Engine, error) {
	engine, err := recommend.NewEngine(buildEngineConfig(cfg), source, logger)
	if err != nil {
		return nil, err
	}

	engine.RegisterAlgorithm(algorithms.NewPopularity())
	engine.RegisterAlgorithm(algorithms.NewContentBased(algorithms.ContentBasedConfig{}))
	engine.RegisterAlgorithm(algorithms.NewUserBasedCF(buildKNNConfig(cfg)))

	logger.Info().
		Int("neighbors", cfg.Recommend.Neighbors).
		Str("similarity", cfg.Recommend.Similarity).
		Float64("content_weight", cfg.Recommend.ContentWeight).
		Float64("collaborative_weight", cfg.Recommend.CollaborativeWeight).
		Msg("Recommendation engine initialized")

	return engine, nil
}

// buildEngineConfig creates the engine configuration from app config.
func buildEngineConfig(cfg *config.Config) *recommend.Config {
	engineCfg := recommend.DefaultConfig()
	engineCfg.Weights = recommend.HybridWeights{
		Content:       cfg.Recommend.ContentWeight,
		Collaborative: cfg.Recommend.CollaborativeWeight,
	}
	engineCfg.Training.Timeout = cfg.Recommend.TrainingTimeout
	engineCfg.Cache = recommend.CacheConfig{
		Enabled:    cfg.Recommend.CacheEnabled,
		TTL:        cfg.Recommend.CacheTTL,
		MaxEntries: cfg.Recommend.CacheMaxEntries,
	}
	return engineCfg
}

// buildKNNConfig creates the user-based collaborative filter configuration.
func buildKNNConfig(cfg *config.Config) algorithms.KNNConfig {
	knn := algorithms.DefaultKNNConfig()
	knn.K = cfg.Recommend.Neighbors
	knn.SimilarityMetric = cfg.Recommend.Similarity
	knn.Shrinkage = cfg.Recommend.Shrinkage
	knn.MinCommonItems = cfg.Recommend.MinCommonItems
	knn.MinSimilarity = cfg.Recommend.MinSimilarity
	return knn
}
