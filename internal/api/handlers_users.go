// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/recdash/internal/catalog"
	"github.com/tomtom215/recdash/internal/models"
	"github.com/tomtom215/recdash/internal/recommend"
)

// defaultItemsLimit is the page size of the catalog search.
const defaultItemsLimit = 50

// Users lists selectable users, guest first.
//
// Method: GET
// Path: /api/v1/users
//
// @Summary List users
// @Tags Users
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.UsersResponse} "Users, guest first"
// @Failure 503 {object} models.APIResponse "Catalog not loaded"
// @Router /users [get]
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := h.requestContext(r)
	defer cancel()

	users, err := h.engine.Users(ctx)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, start, &models.UsersResponse{
		Guest: catalog.GuestUserID,
		Users: users,
	})
}

// UserStrategies lists the strategies available to a user.
//
// Method: GET
// Path: /api/v1/users/{userID}/strategies
//
// @Summary Strategies for a user
// @Description Guests and users without ratings get rating and content only.
// @Tags Users
// @Produce json
// @Param userID path string true "User id"
// @Success 200 {object} models.APIResponse{data=models.StrategiesResponse} "Strategies, default first"
// @Failure 503 {object} models.APIResponse "Catalog not loaded"
// @Router /users/{userID}/strategies [get]
func (h *Handler) UserStrategies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := UserRequest{UserID: chi.URLParam(r, "userID")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	strategies, err := h.engine.Strategies(ctx, req.UserID)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, start, &models.StrategiesResponse{
		UserID:     req.UserID,
		Strategies: strategies,
	})
}

// UserHistory returns a user's most recent interactions, oldest first.
//
// Method: GET
// Path: /api/v1/users/{userID}/history
//
// Query Parameters:
//   - limit: number of entries (default from config, max 100)
//
// @Summary Recent activity
// @Tags Users
// @Produce json
// @Param userID path string true "User id"
// @Param limit query int false "Number of entries" maximum(100)
// @Success 200 {object} models.APIResponse{data=models.HistoryResponse} "Entries, oldest first"
// @Failure 400 {object} models.APIResponse "Invalid limit"
// @Failure 503 {object} models.APIResponse "Catalog not loaded"
// @Router /users/{userID}/history [get]
func (h *Handler) UserHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, apiErr := getIntParam(r, "limit", h.config.HistoryLimit)
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}
	req := HistoryRequest{UserID: chi.URLParam(r, "userID"), Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	entries, err := h.engine.RecentActivity(ctx, req.UserID, req.Limit)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, start, h.toHistory(req.UserID, entries))
}

// Items searches the catalog by name or id.
//
// Method: GET
// Path: /api/v1/items
//
// Query Parameters:
//   - q: case-insensitive substring of the name or id (empty matches all)
//   - limit: maximum number of items (default 50, max 500)
//
// @Summary Search items
// @Tags Catalog
// @Produce json
// @Param q query string false "Substring of the name or id"
// @Param limit query int false "Maximum number of items" maximum(500)
// @Success 200 {object} models.APIResponse{data=models.ItemsResponse} "Matching items"
// @Failure 400 {object} models.APIResponse "Invalid limit"
// @Failure 503 {object} models.APIResponse "Catalog not loaded"
// @Router /items [get]
func (h *Handler) Items(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, apiErr := getIntParam(r, "limit", defaultItemsLimit)
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}
	req := ItemsRequest{Query: r.URL.Query().Get("q"), Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	items, err := h.engine.SearchItems(ctx, req.Query, req.Limit)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	resp := &models.ItemsResponse{
		Query: req.Query,
		Items: make([]models.ProductCard, 0, len(items)),
	}
	for i := range items {
		resp.Items = append(resp.Items, h.productCard(&items[i]))
	}
	respondSuccess(w, r, start, resp)
}

// toHistory converts engine history entries.
func (h *Handler) toHistory(userID string, entries []recommend.HistoryEntry) *models.HistoryResponse {
	resp := &models.HistoryResponse{
		UserID:  userID,
		Entries: make([]models.HistoryEntry, 0, len(entries)),
	}
	for i := range entries {
		resp.Entries = append(resp.Entries, models.HistoryEntry{
			Item:       h.productCard(&entries[i].Item),
			UserRating: entries[i].Rating,
			Line:       entries[i].Line,
		})
	}
	return resp
}
