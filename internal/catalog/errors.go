// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput is matched by every MalformedInputError.
	ErrMalformedInput = errors.New("malformed input")

	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrEmptyInput is returned when the source has no header row.
	ErrEmptyInput = errors.New("catalog source is empty")
)

// MalformedInputError describes one bad field in one input row. The row is
// either skipped or repaired; the error is reported, never returned from a load.
type MalformedInputError struct {
	Line   int    `json:"line"`
	Field  string `json:"field"`
	Value  string `json:"value,omitempty"`
	Reason string `json:"reason"`
}

func (e *MalformedInputError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Reason)
	}
	return fmt.Sprintf("line %d: %s %q: %s", e.Line, e.Field, e.Value, e.Reason)
}

// Is reports whether target is ErrMalformedInput.
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}
