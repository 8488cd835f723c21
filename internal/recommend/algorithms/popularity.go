// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package algorithms

import (
	"context"
	"sort"

	"github.com/tomtom215/recdash/internal/catalog"
	"github.com/tomtom215/recdash/internal/recommend"
)

// Popularity ranks items by their popularity score (mean rating weighted by
// the log of the review count). Ties go to the item with more reviews, then
// to the earlier item in the catalog.
type Popularity struct {
	BaseAlgorithm

	sortedIdx []int
}

// NewPopularity creates a new popularity ranker.
func NewPopularity() *Popularity {
	return &Popularity{
		BaseAlgorithm: NewBaseAlgorithm(recommend.AlgorithmPopularity),
	}
}

// Train orders every item in the table.
func (p *Popularity) Train(ctx context.Context, table *catalog.Table) error {
	p.acquireTrainLock()
	defer p.releaseTrainLock()

	items := table.Items()
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return recommend.RankedBefore(&items[order[a]], &items[order[b]], items[order[a]].Popularity, items[order[b]].Popularity)
	})

	if ContextCancelled(ctx) {
		p.sortedIdx = nil
		p.markUntrained()
		return ctx.Err()
	}

	p.sortedIdx = order
	p.markTrained()
	return nil
}

// TopK returns the indices of the k most popular items. k larger than the
// catalog is clamped.
func (p *Popularity) TopK(_ context.Context, k int) ([]int, error) {
	p.acquirePredictLock()
	defer p.releasePredictLock()

	if !p.trained {
		return nil, recommend.ErrNotTrained
	}
	if k < 1 {
		return nil, recommend.ErrInvalidTopN
	}
	if k > len(p.sortedIdx) {
		k = len(p.sortedIdx)
	}

	out := make([]int, k)
	copy(out, p.sortedIdx[:k])
	return out, nil
}
