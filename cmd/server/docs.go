// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

// Package main provides the recdash HTTP server
//
// General API information for swag. Regenerate the docs package with
// `swag init -g cmd/server/docs.go -o docs` after changing any handler
// annotation.
//
// @title Recdash API
// @version 1.0
// @description Product recommendations over a ratings catalog.
// @description
// @description ## Strategies
// @description
// @description - **rating**: popularity ranking (rating weighted by review count)
// @description - **content**: TF-IDF similarity of item tags to a reference item
// @description - **collaborative**: user-based nearest neighbours on explicit ratings
// @description - **hybrid**: content and collaborative blend, degrading to content
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/recdash/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8501
// @BasePath /api/v1
// @schemes http https
//
// @tag.name Recommendations
// @tag.description Ranked product lists from the four strategies
//
// @tag.name Users
// @tag.description Selectable users, their strategies and recent activity
//
// @tag.name Catalog
// @tag.description Catalog search, status and reload
//
// @tag.name Core
// @tag.description Liveness and readiness checks
package main
