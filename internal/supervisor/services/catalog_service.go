// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/recdash/internal/catalog"
	"github.com/tomtom215/recdash/internal/logging"
	"github.com/tomtom215/recdash/internal/metrics"
)

// ModelTrainer trains the recommendation models on the current catalog.
type ModelTrainer interface {
	Train(ctx context.Context) error
}

// CatalogCache is the catalog cache the watcher invalidates.
type CatalogCache interface {
	Invalidate()
}

// CatalogServiceConfig holds configuration for the catalog service.
type CatalogServiceConfig struct {
	// Path is the catalog file.
	Path string

	// Watch reloads the catalog when the file changes.
	Watch bool

	// Debounce coalesces bursts of file events into one reload.
	Debounce time.Duration

	// ReloadLimit caps reloads per minute. Changes beyond it wait for a token.
	ReloadLimit int
}

// CatalogService trains the models once at startup and then, if watching
// is enabled, invalidates the cache and retrains whenever the file changes.
//
// A failed initial training makes Serve return an error so the supervisor
// retries it with backoff. Once trained, restarts skip straight to watching.
type CatalogService struct {
	trainer ModelTrainer
	cache   CatalogCache
	config  CatalogServiceConfig
	logger  zerolog.Logger
	name    string
	limiter *rate.Limiter

	trained atomic.Bool
	reloads atomic.Int64
}

// NewCatalogService creates a new catalog service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCatalogService(trainer ModelTrainer, cache CatalogCache, cfg CatalogServiceConfig, logger zerolog.Logger) *CatalogService {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if cfg.ReloadLimit <= 0 {
		cfg.ReloadLimit = 6
	}
	return &CatalogService{
		trainer: trainer,
		cache:   cache,
		config:  cfg,
		logger:  logger.With().Str("service", "catalog").Logger(),
		name:    "catalog-service",
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.ReloadLimit)), cfg.ReloadLimit),
	}
}

// Serve implements suture.Service.
func (s *CatalogService) Serve(ctx context.Context) error {
	if !s.trained.Load() {
		start := time.Now()
		if err := s.trainer.Train(ctx); err != nil {
			return fmt.Errorf("initial training: %w", err)
		}
		s.trained.Store(true)
		s.logger.Info().Dur("duration", time.Since(start)).Msg("Initial training complete")
	}

	if !s.config.Watch {
		<-ctx.Done()
		return ctx.Err()
	}

	watcher := catalog.NewWatcher(s.config.Path, s.config.Debounce, s.reload, s.logger)
	return watcher.Run(ctx)
}

// reload drops the cached catalog and retrains on the new file.
func (s *CatalogService) reload(ctx context.Context) {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	log := s.logger.With().Str("correlation_id", logging.CorrelationIDFromContext(ctx)).Logger()

	if err := s.limiter.Wait(ctx); err != nil {
		log.Warn().Err(err).Msg("Catalog reload throttled")
		return
	}

	metrics.RecordCatalogInvalidation("watch")
	s.cache.Invalidate()

	start := time.Now()
	if err := s.trainer.Train(ctx); err != nil {
		log.Error().Err(err).Msg("Retraining after catalog change failed")
		return
	}
	s.reloads.Add(1)
	log.Info().Dur("duration", time.Since(start)).Msg("Catalog reloaded after file change")
}

// Reloads returns how many file-triggered reloads succeeded.
func (s *CatalogService) Reloads() int64 {
	return s.reloads.Load()
}

// String implements fmt.Stringer for suture's log messages.
func (s *CatalogService) String() string {
	return s.name
}
