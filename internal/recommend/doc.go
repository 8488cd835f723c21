// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

// Package recommend ranks catalog items for a user or a reference item.
//
// # Strategies
//
//   - TopRated: items ordered by popularity (rating weighted by review count)
//   - ContentBased: items whose tag, category and brand profile is most
//     similar to a reference item
//   - Collaborative: items liked by the users most similar to the target user
//   - Hybrid: a weighted blend of ContentBased and Collaborative that falls
//     back to ContentBased when the user has no collaborative signal
//
// # Engine
//
// The Engine owns a snapshot of the catalog and the algorithms trained on it.
// Algorithms are registered by name (see the algorithms package) and trained
// together by Train. Ranking calls hold a read lock on the snapshot for their
// whole duration, so a concurrent Train never mixes catalog versions inside
// one call.
//
// Every ordering is total: ties on score are broken by popularity, then
// review count, then catalog insertion order. Identical inputs always produce
// identical output.
//
// # Errors
//
// Unknown reference items produce a NotFoundError and users without a usable
// history an UnknownUserError; both match their sentinel with errors.Is.
// A Hybrid result that fell back to content similarity carries a
// DegradedResultError in Result.Degradation instead of failing.
package recommend
