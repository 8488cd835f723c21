// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package recommend

import (
	"sort"

	"github.com/tomtom215/recdash/internal/catalog"
)

// RankedBefore is the total order shared by every ranking: higher score,
// then higher popularity, then more reviews, then earlier insertion.
func RankedBefore(a, b *catalog.Item, scoreA, scoreB float64) bool {
	if scoreA != scoreB {
		return scoreA > scoreB
	}
	if a.Popularity != b.Popularity {
		return a.Popularity > b.Popularity
	}
	if a.ReviewCount != b.ReviewCount {
		return a.ReviewCount > b.ReviewCount
	}
	return a.Index < b.Index
}

// SortScored orders items with RankedBefore.
func SortScored(items []ScoredItem) {
	sort.Slice(items, func(i, j int) bool {
		return RankedBefore(&items[i].Item, &items[j].Item, items[i].Score, items[j].Score)
	})
}

// NormalizeScores rescales scores into [0, 1] in place with min-max
// normalization. When every score is equal, all become 1.
func NormalizeScores(scores map[int]float64) map[int]float64 {
	if len(scores) == 0 {
		return scores
	}

	var minScore, maxScore float64
	first := true
	for _, score := range scores {
		if first {
			minScore, maxScore = score, score
			first = false
			continue
		}
		if score < minScore {
			minScore = score
		}
		if score > maxScore {
			maxScore = score
		}
	}

	rang := maxScore - minScore
	if rang == 0 {
		for id := range scores {
			scores[id] = 1
		}
		return scores
	}

	for id, score := range scores {
		scores[id] = (score - minScore) / rang
	}
	return scores
}
