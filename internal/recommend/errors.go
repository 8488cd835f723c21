// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package recommend

import (
	"errors"
	"fmt"

	"github.com/tomtom215/recdash/internal/catalog"
)

var (
	// ErrNotFound is matched by NotFoundError.
	ErrNotFound = errors.New("item not found")

	// ErrUnknownUser is matched by UnknownUserError.
	ErrUnknownUser = errors.New("unknown user")

	// ErrDegraded is matched by DegradedResultError.
	ErrDegraded = errors.New("degraded result")

	// ErrInvalidTopN is returned when fewer than one result is requested.
	ErrInvalidTopN = errors.New("top_n must be at least 1")

	// ErrNotTrained is returned when a strategy's algorithm has no model.
	ErrNotTrained = errors.New("model not trained")

	// ErrAlgorithmMissing is returned when a strategy's algorithm is not registered.
	ErrAlgorithmMissing = errors.New("algorithm not registered")

	// ErrCatalogUnavailable wraps failures to load the catalog.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// MalformedInputError is a row-level input problem found while loading the catalog.
type MalformedInputError = catalog.MalformedInputError

// Reasons a user has no collaborative signal.
const (
	ReasonGuest          = "guest user"
	ReasonNoInteractions = "no interactions"
	ReasonNoNeighbors    = "no similar users"
)

// NotFoundError reports a reference item that is not in the catalog.
type NotFoundError struct {
	ItemID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item %q not found", e.ItemID)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// UnknownUserError reports a user the collaborative filter cannot serve.
type UnknownUserError struct {
	UserID string
	Reason string
}

func (e *UnknownUserError) Error() string {
	return fmt.Sprintf("unknown user %q: %s", e.UserID, e.Reason)
}

// Is reports whether target is ErrUnknownUser.
func (e *UnknownUserError) Is(target error) bool {
	return target == ErrUnknownUser
}

// DegradedResultError describes why a result was produced by a fallback
// strategy. It is attached to a Result, not returned.
type DegradedResultError struct {
	Strategy string
	Fallback string
	Cause    error
}

func (e *DegradedResultError) Error() string {
	return fmt.Sprintf("%s degraded to %s: %v", e.Strategy, e.Fallback, e.Cause)
}

// Is reports whether target is ErrDegraded.
func (e *DegradedResultError) Is(target error) bool {
	return target == ErrDegraded
}

// Unwrap returns the cause of the degradation.
func (e *DegradedResultError) Unwrap() error {
	return e.Cause
}
