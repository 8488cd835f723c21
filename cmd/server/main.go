// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

// Package main is the entry point for the recdash server.
//
// recdash loads a ratings catalog (CSV, TSV or Parquet), trains four
// recommendation strategies on it (rating, content, collaborative and
// hybrid) and serves them as a JSON API for the dashboard front end.
//
// # Startup
//
//  1. Configuration: defaults, optional config.yaml, then environment (Koanf v2)
//  2. Catalog: reader and lazily loaded store
//  3. Engine: algorithm registration
//  4. Supervisor tree: catalog service (initial training, file watcher)
//     and HTTP server
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context; the HTTP server drains
// in-flight requests within server.shutdown_timeout.
//
// # Example Usage
//
//	CATALOG_PATH=./clean_data.csv CATALOG_WATCH=true ./recdash
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/tomtom215/recdash/docs" // Import generated swagger docs
	"github.com/tomtom215/recdash/internal/api"
	"github.com/tomtom215/recdash/internal/catalog"
	"github.com/tomtom215/recdash/internal/config"
	"github.com/tomtom215/recdash/internal/logging"
	"github.com/tomtom215/recdash/internal/supervisor"
	"github.com/tomtom215/recdash/internal/supervisor/services"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logger := logging.Logger()

	logger.Info().
		Str("catalog", cfg.Catalog.Path).
		Str("format", cfg.Catalog.Format).
		Bool("watch", cfg.Catalog.Watch).
		Str("addr", cfg.Server.Addr()).
		Msg("Starting recdash")

	reader, err := catalog.NewReader(readerConfig(cfg))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create catalog reader")
	}
	store := catalog.NewStore(reader, catalog.Options{
		MaxRating:         cfg.Catalog.MaxRating,
		MaxReportedErrors: cfg.Catalog.MaxReportedErrors,
		BreakerFailures:   cfg.Catalog.BreakerFailures,
		BreakerCooldown:   cfg.Catalog.BreakerCooldown,
	}, logger)

	engine, err := initRecommend(cfg, store, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddCatalogService(services.NewCatalogService(engine, store, services.CatalogServiceConfig{
		Path:        cfg.Catalog.Path,
		Watch:       cfg.Catalog.Watch,
		Debounce:    cfg.Catalog.WatchDebounce,
		ReloadLimit: cfg.Catalog.ReloadLimit,
	}, logger))

	handler := api.NewHandler(engine, store, api.HandlerConfigFrom(cfg))
	router := api.NewRouter(handler, api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.Security.RateLimitReqs,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		RateLimitDisabled:  cfg.Security.RateLimitDisabled,
	}))

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout, logger))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// readerConfig maps the catalog section onto the reader configuration.
func readerConfig(cfg *config.Config) catalog.ReaderConfig {
	rc := catalog.ReaderConfig{
		Path:   cfg.Catalog.Path,
		Format: cfg.Catalog.Format,
	}
	if d := []rune(cfg.Catalog.Delimiter); len(d) > 0 {
		rc.Delimiter = d[0]
	}
	return rc
}
