// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Reader produces the raw rows of a catalog source.
type Reader interface {
	Read(ctx context.Context) ([]RawRow, error)
	Source() string
}

// Reader formats accepted by NewReader.
const (
	FormatAuto   = "auto"
	FormatCSV    = "csv"
	FormatDuckDB = "duckdb"
)

// ReaderConfig selects and configures a Reader.
type ReaderConfig struct {
	Path      string
	Format    string
	Delimiter rune
}

// NewReader returns the reader for cfg. In auto mode Parquet files go through
// DuckDB and everything else through the CSV reader.
func NewReader(cfg ReaderConfig) (Reader, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("catalog path is empty")
	}
	format := cfg.Format
	if format == "" || format == FormatAuto {
		format = FormatCSV
		if strings.EqualFold(filepath.Ext(cfg.Path), ".parquet") {
			format = FormatDuckDB
		}
	}

	switch format {
	case FormatCSV:
		return NewCSVReader(cfg.Path, cfg.Delimiter), nil
	case FormatDuckDB:
		return NewDuckDBReader(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unknown catalog format %q", cfg.Format)
	}
}

// column identifies a RawRow field.
type column int

const (
	colUnknown column = iota
	colUser
	colItem
	colName
	colBrand
	colCategory
	colTags
	colImage
	colRating
	colReviewCount
	colDescription
)

// headerAliases maps normalized header names to columns. Headers are
// lower-cased with spaces, dashes and underscores removed before lookup.
var headerAliases = map[string]column{
	"id":          colUser,
	"userid":      colUser,
	"user":        colUser,
	"prodid":      colItem,
	"productid":   colItem,
	"itemid":      colItem,
	"item":        colItem,
	"name":        colName,
	"productname": colName,
	"brand":       colBrand,
	"category":    colCategory,
	"tags":        colTags,
	"imageurl":    colImage,
	"image":       colImage,
	"rating":      colRating,
	"reviewcount": colReviewCount,
	"reviews":     colReviewCount,
	"description": colDescription,
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// mapHeader resolves header cells to columns. The first cell matching a
// column wins; later duplicates are ignored.
func mapHeader(header []string) ([]column, error) {
	cols := make([]column, len(header))
	found := make(map[column]bool)
	for i, h := range header {
		c := headerAliases[normalizeHeader(h)]
		if c == colUnknown || found[c] {
			continue
		}
		cols[i] = c
		found[c] = true
	}
	if !found[colItem] {
		return nil, fmt.Errorf("%w: item id (ProdID)", ErrMissingColumn)
	}
	return cols, nil
}

func buildRow(line int, cols []column, record []string) RawRow {
	row := RawRow{Line: line}
	for i, c := range cols {
		if i >= len(record) {
			break
		}
		v := record[i]
		switch c {
		case colUser:
			row.UserID = v
		case colItem:
			row.ItemID = v
		case colName:
			row.Name = v
		case colBrand:
			row.Brand = v
		case colCategory:
			row.Category = v
		case colTags:
			row.Tags = v
		case colImage:
			row.ImageURL = v
		case colRating:
			row.Rating = v
		case colReviewCount:
			row.ReviewCount = v
		case colDescription:
			row.Description = v
		}
	}
	return row
}
