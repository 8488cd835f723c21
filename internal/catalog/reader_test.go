// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `ID,ProdID,Rating,ReviewCount,Category,Brand,Name,ImageURL,Tags
u1,P1,4.5,100,Beauty > Hair,Acme,Shampoo,http://img/1.jpg|http://img/2.jpg,"hair, care"
u2,P1,3.5,100,Beauty > Hair,Acme,Shampoo,,
u2,P2,5,20,Beauty > Skin,Glow,"Cream, Night",,skin
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCSVReader_Read(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "catalog.csv", sampleCSV)
	rows, err := NewCSVReader(path, ',').Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}

	first := rows[0]
	if first.Line != 2 || first.UserID != "u1" || first.ItemID != "P1" || first.Tags != "hair, care" {
		t.Errorf("first row = %+v", first)
	}
	if rows[2].Name != "Cream, Night" {
		t.Errorf("quoted name = %q", rows[2].Name)
	}
}

func TestCSVReader_HeaderAliasesAndDelimiter(t *testing.T) {
	t.Parallel()

	content := "\ufeffuser_id\titem-id\tRATING\textra\nu1\tX\t4\tignored\n"
	path := writeFile(t, "catalog.tsv", content)

	rows, err := NewCSVReader(path, '\t').Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(rows) != 1 || rows[0].UserID != "u1" || rows[0].ItemID != "X" || rows[0].Rating != "4" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestCSVReader_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"empty file", "", ErrEmptyInput},
		{"no item column", "ID,Rating\nu1,4\n", ErrMissingColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeFile(t, "catalog.csv", tt.content)
			_, err := NewCSVReader(path, ',').Read(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("Read() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := NewCSVReader(filepath.Join(t.TempDir(), "missing.csv"), ',').Read(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCSVReader_ShortRows(t *testing.T) {
	t.Parallel()

	rows, err := NewCSVReader("", ',').decode(context.Background(), strings.NewReader("ProdID,Name,Rating\nP1\nP2,Two,3\n"))
	if err != nil {
		t.Fatalf("decode() error = %v", err)
	}
	if len(rows) != 2 || rows[0].ItemID != "P1" || rows[0].Name != "" || rows[1].Rating != "3" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestNewReader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cfg     ReaderConfig
		want    string
		wantErr bool
	}{
		{ReaderConfig{Path: "a.csv"}, "*catalog.CSVReader", false},
		{ReaderConfig{Path: "a.PARQUET", Format: FormatAuto}, "*catalog.DuckDBReader", false},
		{ReaderConfig{Path: "a.csv", Format: FormatDuckDB}, "*catalog.DuckDBReader", false},
		{ReaderConfig{Path: "a.csv", Format: "xml"}, "", true},
		{ReaderConfig{}, "", true},
	}
	for _, tt := range tests {
		r, err := NewReader(tt.cfg)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NewReader(%+v) expected error", tt.cfg)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewReader(%+v) error = %v", tt.cfg, err)
			continue
		}
		if got := typeName(r); got != tt.want {
			t.Errorf("NewReader(%+v) = %s, want %s", tt.cfg, got, tt.want)
		}
	}
}

func typeName(r Reader) string {
	switch r.(type) {
	case *CSVReader:
		return "*catalog.CSVReader"
	case *DuckDBReader:
		return "*catalog.DuckDBReader"
	}
	return "unknown"
}

func TestDuckDBReader_CSV(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "it's catalog.csv", sampleCSV)
	rows, err := NewDuckDBReader(path).Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if rows[0].Line != 2 || rows[0].ItemID != "P1" || rows[0].Rating != "4.5" {
		t.Errorf("first row = %+v", rows[0])
	}

	table, report := Normalize(rows, DefaultOptions())
	if table.Len() != 2 || report.Interactions != 3 {
		t.Errorf("normalized %d items, %d interactions", table.Len(), report.Interactions)
	}
}
