// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/recdash/internal/catalog"
)

// Strategy names.
const (
	StrategyTopRated      = "rating"
	StrategyContent       = "content"
	StrategyCollaborative = "collaborative"
	StrategyHybrid        = "hybrid"
)

// Algorithm names the engine looks up for each strategy.
const (
	AlgorithmPopularity = "popularity"
	AlgorithmContent    = "content"
	AlgorithmUserCF     = "usercf"
)

// Algorithm is a model trained on a catalog snapshot. Scores are keyed by
// item index (catalog.Item.Index).
type Algorithm interface {
	// Name returns the algorithm identifier (e.g., "content", "usercf").
	Name() string

	// Train fits the model on the table. On error the model is left untrained.
	Train(ctx context.Context, table *catalog.Table) error

	// IsTrained returns whether the model has been trained.
	IsTrained() bool

	// Version returns the model version (incremented on each train).
	Version() int

	// LastTrainedAt returns when the model was last trained.
	LastTrainedAt() time.Time
}

// GlobalRanker orders every item independently of any user.
type GlobalRanker interface {
	Algorithm

	// TopK returns the indices of the k best items, best first.
	TopK(ctx context.Context, k int) ([]int, error)
}

// ItemScorer scores items against a reference item.
type ItemScorer interface {
	Algorithm

	// PredictSimilar returns similarity scores for items related to itemIndex.
	// The reference item and unrelated items (score <= 0) are omitted.
	PredictSimilar(ctx context.Context, itemIndex int) (map[int]float64, error)
}

// UserScorer predicts ratings for items a user has not rated.
type UserScorer interface {
	Algorithm

	// Predict returns predicted ratings keyed by item index. It returns an
	// UnknownUserError when the user has no usable signal.
	Predict(ctx context.Context, userID string) (map[int]float64, error)
}

// ScoredItem is one ranked item.
type ScoredItem struct {
	Item  catalog.Item `json:"item"`
	Score float64      `json:"score"`

	// Scores holds per-signal scores for blended strategies.
	Scores map[string]float64 `json:"scores,omitempty"`
}

// Result is the output of a ranking call.
type Result struct {
	Strategy string       `json:"strategy"`
	Items    []ScoredItem `json:"items"`

	// Reference is the item content similarity was measured against.
	Reference *catalog.Item `json:"reference,omitempty"`

	// Degraded is set when the result came from a fallback strategy;
	// Degradation says which and why.
	Degraded    bool                 `json:"degraded"`
	Degradation *DegradedResultError `json:"-"`

	CatalogLoadedAt time.Time `json:"catalog_loaded_at"`
}

// clone copies the result so a cached value is never shared with a caller.
// Item tags and score breakdowns are not mutated after ranking and stay shared.
func (r *Result) clone() *Result {
	c := *r
	c.Items = append([]ScoredItem(nil), r.Items...)
	if r.Reference != nil {
		ref := *r.Reference
		c.Reference = &ref
	}
	return &c
}

// HistoryEntry is one past interaction with the item it refers to.
type HistoryEntry struct {
	Item   catalog.Item `json:"item"`
	Rating float64      `json:"rating"`
	Line   int          `json:"line"`
}

// TrainingStatus represents the current training state.
type TrainingStatus struct {
	// IsTraining indicates whether training is currently in progress.
	IsTraining bool `json:"is_training"`

	// LastTrainedAt is when training last completed.
	LastTrainedAt time.Time `json:"last_trained_at"`

	// LastTrainingDurationMS is how long the last training took.
	LastTrainingDurationMS int64 `json:"last_training_duration_ms"`

	// LastError contains the last training error, if any.
	LastError string `json:"last_error,omitempty"`

	// ItemCount, UserCount and InteractionCount describe the trained snapshot.
	ItemCount        int `json:"item_count"`
	UserCount        int `json:"user_count"`
	InteractionCount int `json:"interaction_count"`

	// ModelVersion increments on every successful training.
	ModelVersion int `json:"model_version"`

	// Algorithms reports per-algorithm training state.
	Algorithms map[string]AlgorithmStatus `json:"algorithms"`

	// ResultCache is nil when the result cache is disabled.
	ResultCache *CacheStatus `json:"result_cache,omitempty"`
}

// CacheStatus describes the ranking result cache. Hits and misses count
// since startup; Entries covers the current model version only.
type CacheStatus struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// AlgorithmStatus is the state of one registered algorithm.
type AlgorithmStatus struct {
	Trained       bool      `json:"trained"`
	Version       int       `json:"version"`
	LastTrainedAt time.Time `json:"last_trained_at"`
}
