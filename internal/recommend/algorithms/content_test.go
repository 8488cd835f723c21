// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package algorithms

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/tomtom215/recdash/internal/catalog"
	"github.com/tomtom215/recdash/internal/recommend"
)

func trainedContent(t *testing.T, table *catalog.Table) *ContentBased {
	t.Helper()
	c := NewContentBased(ContentBasedConfig{})
	if err := c.Train(context.Background(), table); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	return c
}

func TestContentBased_SharedTagsWin(t *testing.T) {
	t.Parallel()

	table := buildTable(t, []catalog.RawRow{
		{ItemID: "X", Tags: "shoes,running"},
		{ItemID: "Y", Tags: "shoes,running"},
		{ItemID: "Z", Tags: "jacket"},
	})
	c := trainedContent(t, table)

	x, _ := table.IndexOf("X")
	y, _ := table.IndexOf("Y")
	scores, err := c.PredictSimilar(context.Background(), x)
	if err != nil {
		t.Fatalf("PredictSimilar() error = %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("PredictSimilar() = %v, want only Y", scores)
	}
	if math.Abs(scores[y]-1) > 1e-9 {
		t.Errorf("sim(X, Y) = %g, want 1", scores[y])
	}
}

func TestContentBased_ExcludesReference(t *testing.T) {
	t.Parallel()

	table := buildTable(t, []catalog.RawRow{
		{ItemID: "1", Tags: "a,b", Brand: "Acme"},
		{ItemID: "2", Tags: "a", Brand: "Acme"},
		{ItemID: "3", Tags: "b", Category: "Home > Kitchen"},
		{ItemID: "4", Category: "kitchen/a"},
	})
	c := trainedContent(t, table)

	for i := 0; i < table.Len(); i++ {
		scores, err := c.PredictSimilar(context.Background(), i)
		if err != nil {
			t.Fatalf("PredictSimilar(%d) error = %v", i, err)
		}
		if _, ok := scores[i]; ok {
			t.Errorf("PredictSimilar(%d) contains the reference item", i)
		}
		for j, s := range scores {
			if s <= 0 || s > 1+1e-9 {
				t.Errorf("sim(%d, %d) = %g, want in (0, 1]", i, j, s)
			}
		}
	}
}

func TestContentBased_BrandAndCategoryTerms(t *testing.T) {
	t.Parallel()

	table := buildTable(t, []catalog.RawRow{
		{ItemID: "ref", Brand: "Acme", Category: "Beauty > Hair"},
		{ItemID: "brand", Brand: "ACME"},
		{ItemID: "cat", Category: "hair"},
		{ItemID: "none", Brand: "Other", Category: "Garden"},
	})
	c := trainedContent(t, table)

	ref, _ := table.IndexOf("ref")
	scores, err := c.PredictSimilar(context.Background(), ref)
	if err != nil {
		t.Fatalf("PredictSimilar() error = %v", err)
	}
	for _, id := range []string{"brand", "cat"} {
		ix, _ := table.IndexOf(id)
		if scores[ix] <= 0 {
			t.Errorf("%s not similar to reference: %v", id, scores)
		}
	}
	none, _ := table.IndexOf("none")
	if _, ok := scores[none]; ok {
		t.Errorf("unrelated item scored %g", scores[none])
	}
}

func TestContentBased_SimilaritySymmetric(t *testing.T) {
	t.Parallel()

	table := buildTable(t, []catalog.RawRow{
		{ItemID: "1", Tags: "a,b,c"},
		{ItemID: "2", Tags: "b,c,d"},
		{ItemID: "3", Tags: "c"},
	})
	c := trainedContent(t, table)

	for a := 0; a < table.Len(); a++ {
		scores, _ := c.PredictSimilar(context.Background(), a)
		for b := 0; b < table.Len(); b++ {
			if a == b {
				continue
			}
			if math.Abs(c.Similarity(a, b)-c.Similarity(b, a)) > 1e-12 {
				t.Errorf("Similarity(%d,%d) != Similarity(%d,%d)", a, b, b, a)
			}
			if math.Abs(c.Similarity(a, b)-scores[b]) > 1e-12 {
				t.Errorf("Similarity(%d,%d) = %g, PredictSimilar gave %g", a, b, c.Similarity(a, b), scores[b])
			}
		}
	}
}

func TestContentBased_Idempotent(t *testing.T) {
	t.Parallel()

	table := buildTable(t, []catalog.RawRow{
		{ItemID: "1", Tags: "a,b"},
		{ItemID: "2", Tags: "a"},
		{ItemID: "3", Tags: "b,c"},
	})
	c := trainedContent(t, table)

	first, _ := c.PredictSimilar(context.Background(), 0)
	second, _ := c.PredictSimilar(context.Background(), 0)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("PredictSimilar not idempotent: %v vs %v", first, second)
	}
}

func TestContentBased_Errors(t *testing.T) {
	t.Parallel()

	c := NewContentBased(ContentBasedConfig{})
	if _, err := c.PredictSimilar(context.Background(), 0); !errors.Is(err, recommend.ErrNotTrained) {
		t.Errorf("PredictSimilar() before Train error = %v, want ErrNotTrained", err)
	}

	table := buildTable(t, []catalog.RawRow{{ItemID: "1", Tags: "a"}})
	if err := c.Train(context.Background(), table); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if _, err := c.PredictSimilar(context.Background(), 5); !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("PredictSimilar(5) error = %v, want ErrNotFound", err)
	}
}

func TestCategorySegments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: []string{}},
		{in: "Beauty > Hair Care", want: []string{"beauty", "hair care"}},
		{in: "a/b|c;d,e", want: []string{"a", "b", "c", "d", "e"}},
		{in: " > ", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := categorySegments(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("categorySegments(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
