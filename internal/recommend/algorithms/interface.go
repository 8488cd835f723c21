// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

// Package algorithms implements the ranking models used by the recommendation engine.
//
//   - Popularity: review-count-weighted rating, user independent
//   - ContentBased: TF-IDF cosine similarity over tags, category and brand
//   - UserBasedCF: user-user k-nearest-neighbour collaborative filtering
//
// # Thread Safety
//
// All algorithms are safe for concurrent use. Training acquires an exclusive
// lock while prediction uses a shared lock. Training builds the new model
// aside and swaps it in only on success; a failed Train leaves the algorithm
// untrained rather than half-trained.
package algorithms

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/recdash/internal/recommend"
)

// BaseAlgorithm provides common functionality for all algorithms.
type BaseAlgorithm struct {
	name          string
	trained       bool
	version       int
	lastTrainedAt time.Time
	mu            sync.RWMutex
}

// NewBaseAlgorithm creates a new base algorithm with the given name.
func NewBaseAlgorithm(name string) BaseAlgorithm {
	return BaseAlgorithm{
		name: name,
	}
}

// Name returns the algorithm identifier.
func (b *BaseAlgorithm) Name() string {
	return b.name
}

// IsTrained returns whether the model has been trained.
func (b *BaseAlgorithm) IsTrained() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.trained
}

// Version returns the model version.
func (b *BaseAlgorithm) Version() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// LastTrainedAt returns when the model was last trained.
func (b *BaseAlgorithm) LastTrainedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastTrainedAt
}

// markTrained must be called while holding the training lock.
func (b *BaseAlgorithm) markTrained() {
	b.trained = true
	b.version++
	b.lastTrainedAt = time.Now()
}

// markUntrained must be called while holding the training lock.
func (b *BaseAlgorithm) markUntrained() {
	b.trained = false
}

func (b *BaseAlgorithm) acquireTrainLock() {
	b.mu.Lock()
}

func (b *BaseAlgorithm) releaseTrainLock() {
	b.mu.Unlock()
}

func (b *BaseAlgorithm) acquirePredictLock() {
	b.mu.RLock()
}

func (b *BaseAlgorithm) releasePredictLock() {
	b.mu.RUnlock()
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

var (
	_ recommend.GlobalRanker = (*Popularity)(nil)
	_ recommend.ItemScorer   = (*ContentBased)(nil)
	_ recommend.UserScorer   = (*UserBasedCF)(nil)
)
