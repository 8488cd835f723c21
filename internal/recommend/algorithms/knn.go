// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package algorithms

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/recdash/internal/catalog"
	"github.com/tomtom215/recdash/internal/recommend"
)

// Similarity metrics understood by UserBasedCF.
const (
	SimilarityCosine  = "cosine"
	SimilarityPearson = "pearson"
)

// KNNConfig contains configuration for KNN-based algorithms.
type KNNConfig struct {
	// K is the number of neighbors to consider.
	K int

	// MinSimilarity is the similarity a neighbor must exceed.
	MinSimilarity float64

	// SimilarityMetric specifies which similarity function to use.
	// Options: "cosine", "pearson".
	SimilarityMetric string

	// Shrinkage adds a penalty for pairs with few co-ratings.
	// Regularizes similarity: sim = raw_sim * n / (n + shrinkage)
	Shrinkage float64

	// MinCommonItems is the minimum number of co-rated items required
	// before two users are compared.
	MinCommonItems int

	// NumWorkers is the number of parallel workers.
	NumWorkers int
}

// DefaultKNNConfig returns default KNN configuration.
func DefaultKNNConfig() KNNConfig {
	return KNNConfig{
		K:                20,
		MinSimilarity:    0,
		SimilarityMetric: SimilarityCosine,
		Shrinkage:        0,
		MinCommonItems:   1,
		NumWorkers:       4,
	}
}

// neighbor represents a similar user with their similarity score.
type neighbor struct {
	ID         string
	Similarity float64
}

// rated is one entry of a user's rating vector.
type rated struct {
	item   int
	rating float64
}

// UserBasedCF implements user-based collaborative filtering.
// It recommends items that similar users have rated.
//
// For a target user u and an item i that u has not rated:
//
//	score(u, i) = sum_{v in N(u)} sim(u, v) * r(v, i) / sum_{v in N(u)} |sim(u, v)|
//
// where N(u) is the set of the K most similar users to u who rated item i.
type UserBasedCF struct {
	BaseAlgorithm
	config KNNConfig

	matrix *userMatrix

	// userNeighbors stores precomputed neighbors, most similar first
	userNeighbors map[string][]neighbor
}

// userMatrix is the sparse user x item rating matrix of one training run.
type userMatrix struct {
	// items stores each user's ratings sorted by item index
	items map[string][]rated

	// vectors stores the same ratings keyed by item index
	vectors map[string]map[int]float64

	// norms caches the L2 norm of each user's rating vector
	norms map[string]float64

	// itemUsers stores which users rated each item, sorted by user id
	itemUsers map[int][]string
}

// NewUserBasedCF creates a new user-based CF algorithm.
func NewUserBasedCF(cfg KNNConfig) *UserBasedCF {
	if cfg.K <= 0 {
		cfg.K = 20
	}
	if cfg.SimilarityMetric == "" {
		cfg.SimilarityMetric = SimilarityCosine
	}
	if cfg.MinCommonItems <= 0 {
		cfg.MinCommonItems = 1
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 4
	}

	return &UserBasedCF{
		BaseAlgorithm: NewBaseAlgorithm(recommend.AlgorithmUserCF),
		config:        cfg,
	}
}

// Train builds the rating matrix and precomputes every user's neighbors.
func (u *UserBasedCF) Train(ctx context.Context, table *catalog.Table) error {
	u.acquireTrainLock()
	defer u.releaseTrainLock()

	userItems := make(map[string][]rated)
	userVectors := make(map[string]map[int]float64)
	norms := make(map[string]float64)
	itemUsers := make(map[int][]string)

	// ForEachUser visits users in sorted order, so itemUsers lists stay sorted.
	table.ForEachUser(func(userID string, ratings []catalog.Interaction) {
		vec := make(map[int]float64, len(ratings))
		list := make([]rated, 0, len(ratings))
		var norm float64
		for _, r := range ratings {
			vec[r.ItemIndex] = r.Rating
			list = append(list, rated{item: r.ItemIndex, rating: r.Rating})
			norm += r.Rating * r.Rating
			itemUsers[r.ItemIndex] = append(itemUsers[r.ItemIndex], userID)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].item < list[j].item })
		userItems[userID] = list
		userVectors[userID] = vec
		norms[userID] = math.Sqrt(norm)
	})

	m := &userMatrix{
		items:     userItems,
		vectors:   userVectors,
		norms:     norms,
		itemUsers: itemUsers,
	}

	userIDs := table.Users()
	results := make([][]neighbor, len(userIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.config.NumWorkers)
	for i, uid := range userIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = u.computeUserNeighbors(m, uid)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		u.reset()
		return err
	}
	if ContextCancelled(ctx) {
		u.reset()
		return ctx.Err()
	}

	userNeighbors := make(map[string][]neighbor, len(userIDs))
	for i, uid := range userIDs {
		userNeighbors[uid] = results[i]
	}
	u.matrix = m
	u.userNeighbors = userNeighbors

	u.markTrained()
	return nil
}

// computeUserNeighbors computes the K most similar users for a given user.
// Only users sharing at least MinCommonItems rated items are compared.
func (u *UserBasedCF) computeUserNeighbors(m *userMatrix, userID string) []neighbor {
	own := m.items[userID]
	if len(own) == 0 {
		return nil
	}

	common := make(map[string]int)
	for _, r := range own {
		for _, other := range m.itemUsers[r.item] {
			if other != userID {
				common[other]++
			}
		}
	}

	neighbors := make([]neighbor, 0, len(common))
	for otherID, n := range common {
		if n < u.config.MinCommonItems {
			continue
		}
		sim := u.computeSimilarity(m, userID, otherID, n)
		if sim > u.config.MinSimilarity {
			neighbors = append(neighbors, neighbor{ID: otherID, Similarity: sim})
		}
	}

	// Sort by similarity (descending), then id, and take top K
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].ID < neighbors[j].ID
	})

	if len(neighbors) > u.config.K {
		neighbors = neighbors[:u.config.K]
	}

	return neighbors
}

// computeSimilarity computes the similarity between two users that share
// n rated items.
func (u *UserBasedCF) computeSimilarity(m *userMatrix, a, b string, n int) float64 {
	var sim float64
	switch u.config.SimilarityMetric {
	case SimilarityPearson:
		sim = m.pearson(a, b)
	default:
		sim = m.cosine(a, b)
	}

	// Apply shrinkage
	if u.config.Shrinkage > 0 {
		sim = sim * float64(n) / (float64(n) + u.config.Shrinkage)
	}

	return sim
}

// cosine is the cosine of the full rating vectors; unrated items count
// as zero.
func (m *userMatrix) cosine(a, b string) float64 {
	normA, normB := m.norms[a], m.norms[b]
	if normA == 0 || normB == 0 {
		return 0
	}

	other := m.vectors[b]
	var dot float64
	for _, r := range m.items[a] {
		if rb, ok := other[r.item]; ok {
			dot += r.rating * rb
		}
	}

	return dot / (normA * normB)
}

// pearson is the Pearson correlation over co-rated items.
func (m *userMatrix) pearson(a, b string) float64 {
	other := m.vectors[b]

	// Compute means over common items
	var sumA, sumB float64
	var n int
	for _, r := range m.items[a] {
		if rb, ok := other[r.item]; ok {
			sumA += r.rating
			sumB += rb
			n++
		}
	}
	if n == 0 {
		return 0
	}
	meanA := sumA / float64(n)
	meanB := sumB / float64(n)

	var num, denA, denB float64
	for _, r := range m.items[a] {
		if rb, ok := other[r.item]; ok {
			diffA := r.rating - meanA
			diffB := rb - meanB
			num += diffA * diffB
			denA += diffA * diffA
			denB += diffB * diffB
		}
	}

	if denA == 0 || denB == 0 {
		return 0
	}

	return num / (math.Sqrt(denA) * math.Sqrt(denB))
}

// Predict returns predicted ratings for every item the user has not rated
// and at least one neighbor has. The guest sentinel, users without ratings
// and users without neighbors get an UnknownUserError. A user whose
// neighbors rated nothing new gets an empty map.
func (u *UserBasedCF) Predict(ctx context.Context, userID string) (map[int]float64, error) {
	u.acquirePredictLock()
	defer u.releasePredictLock()

	if !u.trained {
		return nil, recommend.ErrNotTrained
	}
	if userID == catalog.GuestUserID {
		return nil, &recommend.UnknownUserError{UserID: userID, Reason: recommend.ReasonGuest}
	}
	own, ok := u.matrix.vectors[userID]
	if !ok || len(own) == 0 {
		return nil, &recommend.UnknownUserError{UserID: userID, Reason: recommend.ReasonNoInteractions}
	}
	neighbors := u.userNeighbors[userID]
	if len(neighbors) == 0 {
		return nil, &recommend.UnknownUserError{UserID: userID, Reason: recommend.ReasonNoNeighbors}
	}

	num := make(map[int]float64)
	den := make(map[int]float64)
	for _, n := range neighbors {
		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		for _, r := range u.matrix.items[n.ID] {
			if _, seen := own[r.item]; seen {
				continue
			}
			num[r.item] += n.Similarity * r.rating
			den[r.item] += math.Abs(n.Similarity)
		}
	}

	scores := make(map[int]float64, len(num))
	for item, d := range den {
		if d > 0 {
			scores[item] = num[item] / d
		}
	}
	return scores, nil
}

// Neighbors returns the precomputed neighbors of a user, most similar first.
func (u *UserBasedCF) Neighbors(userID string) []string {
	u.acquirePredictLock()
	defer u.releasePredictLock()

	ns := u.userNeighbors[userID]
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}

// reset must be called while holding the training lock.
func (u *UserBasedCF) reset() {
	u.matrix = nil
	u.userNeighbors = nil
	u.markUntrained()
}
