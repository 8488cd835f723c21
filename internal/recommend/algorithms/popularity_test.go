// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package algorithms

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/recdash/internal/catalog"
	"github.com/tomtom215/recdash/internal/recommend"
)

func popularityTable(t *testing.T) *catalog.Table {
	t.Helper()
	return buildTable(t, []catalog.RawRow{
		{ItemID: "A", Name: "Alpha", Rating: "4.5", ReviewCount: "100"},
		{ItemID: "B", Name: "Bravo", Rating: "4.8", ReviewCount: "5"},
		{ItemID: "C", Name: "Charlie", Rating: "4.0", ReviewCount: "1000"},
	})
}

func TestPopularity_TopK(t *testing.T) {
	t.Parallel()

	table := popularityTable(t)
	p := NewPopularity()
	if err := p.Train(context.Background(), table); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	tests := []struct {
		name string
		k    int
		want []string
	}{
		{name: "review count outweighs small rating gap", k: 2, want: []string{"C", "A"}},
		{name: "single", k: 1, want: []string{"C"}},
		{name: "clamped to catalog size", k: 10, want: []string{"C", "A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			idx, err := p.TopK(context.Background(), tt.k)
			if err != nil {
				t.Fatalf("TopK() error = %v", err)
			}
			if len(idx) != len(tt.want) {
				t.Fatalf("TopK() returned %d items, want %d", len(idx), len(tt.want))
			}
			for i, id := range tt.want {
				if got := table.Item(idx[i]).ID; got != id {
					t.Errorf("position %d = %s, want %s", i, got, id)
				}
			}
		})
	}
}

func TestPopularity_NonIncreasing(t *testing.T) {
	t.Parallel()

	table := buildTable(t, []catalog.RawRow{
		{ItemID: "1", Rating: "3", ReviewCount: "7"},
		{ItemID: "2", Rating: "5", ReviewCount: "0"},
		{ItemID: "3", Rating: "4", ReviewCount: "50"},
		{ItemID: "4", Rating: "4", ReviewCount: "50"},
		{ItemID: "5", Rating: "2", ReviewCount: "900"},
	})
	p := NewPopularity()
	if err := p.Train(context.Background(), table); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	idx, err := p.TopK(context.Background(), table.Len())
	if err != nil {
		t.Fatalf("TopK() error = %v", err)
	}
	for i := 1; i < len(idx); i++ {
		prev, cur := table.Item(idx[i-1]), table.Item(idx[i])
		if cur.Popularity > prev.Popularity {
			t.Errorf("position %d (%g) ranks above %d (%g)", i-1, prev.Popularity, i, cur.Popularity)
		}
	}

	// 3 and 4 tie on every signal, so insertion order decides.
	pos := make(map[string]int)
	for i, ix := range idx {
		pos[table.Item(ix).ID] = i
	}
	if pos["3"] > pos["4"] {
		t.Errorf("tie broken against insertion order: %v", pos)
	}
}

func TestPopularity_Errors(t *testing.T) {
	t.Parallel()

	p := NewPopularity()
	if _, err := p.TopK(context.Background(), 1); !errors.Is(err, recommend.ErrNotTrained) {
		t.Errorf("TopK() before Train error = %v, want ErrNotTrained", err)
	}

	if err := p.Train(context.Background(), popularityTable(t)); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	for _, k := range []int{0, -3} {
		if _, err := p.TopK(context.Background(), k); !errors.Is(err, recommend.ErrInvalidTopN) {
			t.Errorf("TopK(%d) error = %v, want ErrInvalidTopN", k, err)
		}
	}
	if p.Version() != 1 {
		t.Errorf("Version() = %d, want 1", p.Version())
	}
}

func TestPopularity_TrainCancelled(t *testing.T) {
	t.Parallel()

	p := NewPopularity()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Train(ctx, popularityTable(t)); !errors.Is(err, context.Canceled) {
		t.Fatalf("Train() error = %v, want context.Canceled", err)
	}
	if p.IsTrained() {
		t.Error("IsTrained() = true after cancelled Train")
	}
}
