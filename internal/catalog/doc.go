// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

// Package catalog loads the ratings file and turns it into an immutable
// in-memory Table of items, users and interactions.
//
// Loading happens in two steps. A Reader produces RawRow values, one per
// input line, with every field still a string. Normalize then validates and
// aggregates those rows:
//
//   - rows without an item id are skipped
//   - ratings are parsed, clamped to [0, MaxRating] and averaged per item
//     and per (user, item) pair
//   - tag strings are split on ',', '|' and ';', lower-cased and de-duplicated
//   - the image reference is the first '|' segment of the raw value
//   - each item gets a popularity score of rating * ln(2 + review count)
//
// Bad rows never fail a load; each problem becomes a MalformedInputError in
// the LoadReport. Only I/O errors and a missing item id column do.
//
// Store caches the Table for the life of the process and reloads it after
// Invalidate. Watcher calls Invalidate when the file changes on disk.
//
// The guest sentinel user "0_guest" never has interactions; rows carrying it
// are dropped from the interaction set.
package catalog
