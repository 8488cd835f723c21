// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package algorithms

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tomtom215/recdash/internal/catalog"
	"github.com/tomtom215/recdash/internal/recommend"
)

// ContentBased implements item-to-item similarity over catalog metadata.
//
// Each item becomes a sparse term vector built from its tags, the segments of
// its category path and its brand. Terms are TF-IDF weighted with smooth IDF
//
//	idf(t) = ln((1 + n) / (1 + df(t))) + 1
//
// and every vector is L2 normalized, so the dot product of two vectors is
// their cosine similarity. An inverted index limits scoring to items that
// share at least one term with the reference.
type ContentBased struct {
	BaseAlgorithm
	config ContentBasedConfig

	// Trained model
	vectors  [][]termWeight       // item index -> sorted terms
	postings map[string][]posting // term -> items carrying it, by item index
}

// ContentBasedConfig contains configuration for content-based filtering.
type ContentBasedConfig struct {
	// TagWeight, CategoryWeight and BrandWeight scale the raw term frequency
	// contributed by each attribute. Zero selects the default of 1.
	TagWeight      float64
	CategoryWeight float64
	BrandWeight    float64
}

type termWeight struct {
	term   string
	weight float64
}

type posting struct {
	item   int
	weight float64
}

// NewContentBased creates a new content-based algorithm.
func NewContentBased(cfg ContentBasedConfig) *ContentBased {
	if cfg.TagWeight <= 0 {
		cfg.TagWeight = 1
	}
	if cfg.CategoryWeight <= 0 {
		cfg.CategoryWeight = 1
	}
	if cfg.BrandWeight <= 0 {
		cfg.BrandWeight = 1
	}

	return &ContentBased{
		BaseAlgorithm: NewBaseAlgorithm(recommend.AlgorithmContent),
		config:        cfg,
	}
}

// Train builds the TF-IDF vectors and inverted index for the table.
func (c *ContentBased) Train(ctx context.Context, table *catalog.Table) error {
	c.acquireTrainLock()
	defer c.releaseTrainLock()

	items := table.Items()
	raw := make([]map[string]float64, len(items))
	df := make(map[string]int)

	for i := range items {
		if i%1024 == 0 && ContextCancelled(ctx) {
			c.reset()
			return ctx.Err()
		}
		tf := c.termFrequencies(&items[i])
		raw[i] = tf
		for term := range tf {
			df[term]++
		}
	}

	n := float64(len(items))
	vectors := make([][]termWeight, len(items))
	postings := make(map[string][]posting, len(df))

	for i, tf := range raw {
		vec := make([]termWeight, 0, len(tf))
		var norm float64
		for term, freq := range tf {
			w := freq * (math.Log((1+n)/(1+float64(df[term]))) + 1)
			vec = append(vec, termWeight{term: term, weight: w})
			norm += w * w
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		sort.Slice(vec, func(a, b int) bool { return vec[a].term < vec[b].term })
		for j := range vec {
			vec[j].weight /= norm
			postings[vec[j].term] = append(postings[vec[j].term], posting{item: i, weight: vec[j].weight})
		}
		vectors[i] = vec
	}

	if ContextCancelled(ctx) {
		c.reset()
		return ctx.Err()
	}

	c.vectors = vectors
	c.postings = postings
	c.markTrained()
	return nil
}

// termFrequencies returns the weighted raw counts of every term on the item.
// Tags and category segments share a vocabulary; brands are namespaced.
func (c *ContentBased) termFrequencies(item *catalog.Item) map[string]float64 {
	tf := make(map[string]float64, len(item.Tags)+4)
	for _, tag := range item.Tags {
		tf[tag] += c.config.TagWeight
	}
	for _, seg := range categorySegments(item.Category) {
		tf[seg] += c.config.CategoryWeight
	}
	if brand := strings.ToLower(strings.TrimSpace(item.Brand)); brand != "" {
		tf["brand:"+brand] += c.config.BrandWeight
	}
	return tf
}

func categorySegments(category string) []string {
	fields := strings.FieldsFunc(category, func(r rune) bool {
		switch r {
		case '>', '/', ',', '|', ';':
			return true
		}
		return false
	})
	segs := make([]string, 0, len(fields))
	for _, f := range fields {
		if s := strings.ToLower(strings.TrimSpace(f)); s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// PredictSimilar returns the cosine similarity of every item sharing a term
// with the reference. The reference itself is never included.
func (c *ContentBased) PredictSimilar(ctx context.Context, itemIndex int) (map[int]float64, error) {
	c.acquirePredictLock()
	defer c.releasePredictLock()

	if !c.trained {
		return nil, recommend.ErrNotTrained
	}
	if itemIndex < 0 || itemIndex >= len(c.vectors) {
		return nil, fmt.Errorf("item index %d out of range: %w", itemIndex, recommend.ErrNotFound)
	}

	scores := make(map[int]float64)
	for _, tw := range c.vectors[itemIndex] {
		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		for _, p := range c.postings[tw.term] {
			if p.item == itemIndex {
				continue
			}
			scores[p.item] += tw.weight * p.weight
		}
	}

	for id, s := range scores {
		if s <= 0 {
			delete(scores, id)
		}
	}
	return scores, nil
}

// Similarity returns the cosine similarity between two items.
func (c *ContentBased) Similarity(a, b int) float64 {
	c.acquirePredictLock()
	defer c.releasePredictLock()

	if a < 0 || b < 0 || a >= len(c.vectors) || b >= len(c.vectors) {
		return 0
	}
	va, vb := c.vectors[a], c.vectors[b]
	var dot float64
	for i, j := 0, 0; i < len(va) && j < len(vb); {
		switch {
		case va[i].term == vb[j].term:
			dot += va[i].weight * vb[j].weight
			i++
			j++
		case va[i].term < vb[j].term:
			i++
		default:
			j++
		}
	}
	return dot
}

// reset must be called while holding the training lock.
func (c *ContentBased) reset() {
	c.vectors = nil
	c.postings = nil
	c.markUntrained()
}
