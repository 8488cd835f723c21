// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
)

// DuckDBReader reads CSV or Parquet files through an in-memory DuckDB
// instance. DuckDB sniffs the CSV dialect itself, so no delimiter is needed.
type DuckDBReader struct {
	path string
}

// NewDuckDBReader returns a reader for path.
func NewDuckDBReader(path string) *DuckDBReader {
	return &DuckDBReader{path: path}
}

// Source returns the file path.
func (r *DuckDBReader) Source() string {
	return r.path
}

// query builds the scan statement. Table functions do not take bind
// parameters for the file name, so the path is embedded as a quoted literal.
func (r *DuckDBReader) query() (string, bool) {
	lit := "'" + strings.ReplaceAll(r.path, "'", "''") + "'"
	if strings.EqualFold(filepath.Ext(r.path), ".parquet") {
		return "SELECT COLUMNS(*)::VARCHAR FROM read_parquet(" + lit + ")", false
	}
	return "SELECT COLUMNS(*)::VARCHAR FROM read_csv_auto(" + lit + ", header = true, all_varchar = true)", true
}

// Read scans the whole file.
func (r *DuckDBReader) Read(ctx context.Context) ([]RawRow, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer db.Close()

	q, hasHeader := r.query()
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("scan catalog %s: %w", r.path, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("catalog columns: %w", err)
	}
	cols, err := mapHeader(names)
	if err != nil {
		return nil, err
	}

	values := make([]sql.NullString, len(names))
	dest := make([]any, len(names))
	for i := range values {
		dest[i] = &values[i]
	}
	record := make([]string, len(names))

	// Line numbers match the CSV reader: the header is line 1.
	line := 0
	if hasHeader {
		line = 1
	}

	var out []RawRow
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		line++
		for i, v := range values {
			record[i] = v.String
		}
		out = append(out, buildRow(line, cols, record))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog rows: %w", err)
	}
	return out, nil
}
