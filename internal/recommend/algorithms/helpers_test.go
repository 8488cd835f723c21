// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package algorithms

import (
	"testing"

	"github.com/tomtom215/recdash/internal/catalog"
)

func buildTable(t *testing.T, rows []catalog.RawRow) *catalog.Table {
	t.Helper()
	for i := range rows {
		if rows[i].Line == 0 {
			rows[i].Line = i + 2
		}
	}
	table, report := catalog.Normalize(rows, catalog.DefaultOptions())
	if report.ErrorCount != 0 {
		t.Fatalf("unexpected malformed rows: %v", report.Errors)
	}
	return table
}

// ratingsTable returns three users where u1 and u2 agree on P1 and P2,
// u2 also rated P3 and u3 only rated P4.
func ratingsTable(t *testing.T) *catalog.Table {
	t.Helper()
	return buildTable(t, []catalog.RawRow{
		{UserID: "u1", ItemID: "P1", Name: "One", Rating: "5", ReviewCount: "10"},
		{UserID: "u1", ItemID: "P2", Name: "Two", Rating: "3", ReviewCount: "10"},
		{UserID: "u2", ItemID: "P1", Rating: "5"},
		{UserID: "u2", ItemID: "P2", Rating: "3"},
		{UserID: "u2", ItemID: "P3", Name: "Three", Rating: "4", ReviewCount: "10"},
		{UserID: "u3", ItemID: "P4", Name: "Four", Rating: "2", ReviewCount: "10"},
	})
}
