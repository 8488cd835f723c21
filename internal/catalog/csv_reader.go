// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// ctxCheckEvery is how many rows are read between context checks.
const ctxCheckEvery = 4096

// CSVReader reads a delimited text file with a header row.
type CSVReader struct {
	path      string
	delimiter rune
}

// NewCSVReader returns a reader for path. A zero delimiter means comma.
func NewCSVReader(path string, delimiter rune) *CSVReader {
	if delimiter == 0 {
		delimiter = ','
	}
	return &CSVReader{path: path, delimiter: delimiter}
}

// Source returns the file path.
func (r *CSVReader) Source() string {
	return r.path
}

// Read parses the whole file.
func (r *CSVReader) Read(ctx context.Context) ([]RawRow, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	return r.decode(ctx, f)
}

func (r *CSVReader) decode(ctx context.Context, src io.Reader) ([]RawRow, error) {
	cr := csv.NewReader(src)
	cr.Comma = r.delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	cols, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	var rows []RawRow
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, fmt.Errorf("read catalog: %w", err)
			}
			// An unparsable record becomes an empty row; Normalize reports it.
			rows = append(rows, RawRow{Line: perr.StartLine})
			continue
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, buildRow(line, cols, record))

		if len(rows)%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	return rows, nil
}
