// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/recdash/internal/metrics"
)

const loadKey = "catalog"

// Status describes the cached table.
type Status struct {
	Source   string      `json:"source"`
	Loaded   bool        `json:"loaded"`
	Version  uint64      `json:"version"`
	LoadedAt time.Time   `json:"loaded_at,omitempty"`
	Report   *LoadReport `json:"report,omitempty"`
	LastErr  string      `json:"last_error,omitempty"`
	Breaker  string      `json:"breaker"`
}

// Store is the process-wide catalog cache. The table is loaded on first use
// and shared until Invalidate. Concurrent first callers share one load.
type Store struct {
	reader Reader
	opts   Options
	logger zerolog.Logger

	group   singleflight.Group
	breaker *gobreaker.CircuitBreaker[[]RawRow]

	mu         sync.RWMutex
	table      *Table
	report     *LoadReport
	version    uint64
	generation uint64
	lastErr    error
}

// NewStore creates an empty store. Nothing is read until Get.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewStore(reader Reader, opts Options, logger zerolog.Logger) *Store {
	defaults := DefaultOptions()
	if opts.BreakerFailures <= 0 {
		opts.BreakerFailures = defaults.BreakerFailures
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = defaults.BreakerCooldown
	}

	s := &Store{
		reader: reader,
		opts:   opts,
		logger: logger.With().Str("component", "catalog").Logger(),
	}

	threshold := uint32(opts.BreakerFailures) //nolint:gosec // validated positive
	s.breaker = gobreaker.NewCircuitBreaker[[]RawRow](gobreaker.Settings{
		Name:        "catalog-" + reader.Source(),
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Catalog circuit breaker state changed")
		},
	})
	return s
}

// Get returns the cached table, loading it if needed. A caller whose ctx is
// cancelled stops waiting, but the shared load keeps going for the others.
func (s *Store) Get(ctx context.Context) (*Table, error) {
	s.mu.RLock()
	t := s.table
	s.mu.RUnlock()
	if t != nil {
		return t, nil
	}

	ch := s.group.DoChan(loadKey, func() (any, error) {
		return s.load(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Table), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Reload drops the cached table and loads it again.
func (s *Store) Reload(ctx context.Context) (*Table, error) {
	s.Invalidate()
	return s.Get(ctx)
}

// Invalidate drops the cached table. A load already in flight finishes for
// its callers but its result is not cached.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.table = nil
	s.generation++
	s.mu.Unlock()
	s.group.Forget(loadKey)
	s.logger.Debug().Msg("Catalog cache invalidated")
}

// Status reports what is cached.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		Source:  s.reader.Source(),
		Loaded:  s.table != nil,
		Version: s.version,
		Report:  s.report,
		Breaker: s.breaker.State().String(),
	}
	if s.table != nil {
		st.LoadedAt = s.table.LoadedAt()
	}
	if s.lastErr != nil {
		st.LastErr = s.lastErr.Error()
	}
	return st
}

// Version increments on every successful load.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) load(ctx context.Context) (*Table, error) {
	s.mu.RLock()
	if s.table != nil {
		t := s.table
		s.mu.RUnlock()
		return t, nil
	}
	gen := s.generation
	s.mu.RUnlock()

	start := time.Now()
	rows, err := s.breaker.Execute(func() ([]RawRow, error) {
		return s.reader.Read(ctx)
	})
	if err != nil {
		err = fmt.Errorf("load catalog %s: %w", s.reader.Source(), err)
		metrics.RecordCatalogLoad(time.Since(start), 0, 0, 0, 0, 0, err)
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.logger.Error().Err(err).Msg("Catalog load failed")
		return nil, err
	}

	table, report := Normalize(rows, s.opts)
	report.Duration = time.Since(start)
	metrics.RecordCatalogLoad(report.Duration, report.Rows, report.Items, report.Users,
		report.Interactions, report.ErrorCount, nil)

	s.mu.Lock()
	if s.generation == gen {
		s.table = table
		s.report = report
		s.version++
		s.lastErr = nil
	}
	version := s.version
	s.mu.Unlock()

	ev := s.logger.Info()
	if report.ErrorCount > 0 {
		ev = s.logger.Warn().Int("malformed", report.ErrorCount)
	}
	ev.Str("source", s.reader.Source()).
		Int("rows", report.Rows).
		Int("items", report.Items).
		Int("users", report.Users).
		Int("interactions", report.Interactions).
		Uint64("version", version).
		Dur("duration", report.Duration).
		Msg("Catalog loaded")

	for _, e := range report.Errors {
		s.logger.Debug().Int("line", e.Line).Str("field", e.Field).Str("reason", e.Reason).Msg("Malformed catalog row")
	}

	return table, nil
}
