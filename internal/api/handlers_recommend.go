// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/recdash/internal/logging"
	"github.com/tomtom215/recdash/internal/recommend"
)

// Collaborative fallback modes.
const (
	FallbackNone   = "none"
	FallbackRating = "rating"
)

// TopRated returns the most popular items.
//
// Method: GET
// Path: /api/v1/recommendations/top-rated
//
// Query Parameters:
//   - k: number of items (default from config)
//
// @Summary Top-rated items
// @Description Ranks the catalog by popularity (rating weighted by review count).
// @Tags Recommendations
// @Produce json
// @Param k query int false "Number of items"
// @Success 200 {object} models.APIResponse{data=models.RecommendationResponse} "Ranked items"
// @Failure 400 {object} models.APIResponse "Invalid k"
// @Failure 503 {object} models.APIResponse "Catalog not loaded"
// @Router /recommendations/top-rated [get]
func (h *Handler) TopRated(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	k, apiErr := getIntParam(r, "k", h.config.TopRatedK)
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}
	req := TopRatedRequest{K: k}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	k = h.clampK(req.K)
	res, err := h.engine.TopRated(ctx, k)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, start, h.recommendationResponse(res, k))
}

// ContentBased returns items similar to a reference item.
//
// Method: GET
// Path: /api/v1/recommendations/content/{itemID}
// Path: /api/v1/recommendations/content?item_id=...|name=...
//
// Query Parameters:
//   - item_id: reference item id (when not in the path)
//   - name: reference item name (when no id is given)
//   - k: number of items (default from config)
//
// @Summary Similar items
// @Description Ranks items by TF-IDF cosine similarity of their tags to a reference item.
// @Description The result may hold fewer than k items when few items share a term with the reference.
// @Tags Recommendations
// @Produce json
// @Param itemID path string false "Reference item id"
// @Param item_id query string false "Reference item id"
// @Param name query string false "Reference item name"
// @Param k query int false "Number of items"
// @Success 200 {object} models.APIResponse{data=models.RecommendationResponse} "Similar items"
// @Failure 400 {object} models.APIResponse "Missing reference or invalid k"
// @Failure 404 {object} models.APIResponse "Unknown item"
// @Failure 503 {object} models.APIResponse "Catalog not loaded"
// @Router /recommendations/content/{itemID} [get]
// @Router /recommendations/content [get]
func (h *Handler) ContentBased(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	k, apiErr := getIntParam(r, "k", h.config.ContentK)
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}
	req := ContentRequest{
		ItemID: chi.URLParam(r, "itemID"),
		Name:   r.URL.Query().Get("name"),
		K:      k,
	}
	if req.ItemID == "" {
		req.ItemID = r.URL.Query().Get("item_id")
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}
	if req.ItemID == "" && req.Name == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "item_id or name is required", nil)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	itemID, err := h.resolveItemID(ctx, req.ItemID, req.Name)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	k = h.clampK(req.K)
	res, err := h.engine.ContentBased(ctx, itemID, k)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, start, h.recommendationResponse(res, k))
}

// Collaborative returns items liked by users similar to the given user.
//
// Method: GET
// Path: /api/v1/recommendations/collaborative/{userID}
//
// Query Parameters:
//   - k: number of items (default from config)
//   - fallback: "rating" (default) serves the popularity ranking when the
//     user has no collaborative signal; "none" returns 404 instead
//
// @Summary Collaborative recommendations
// @Description Predicts ratings from the user's nearest neighbours and ranks unseen items.
// @Tags Recommendations
// @Produce json
// @Param userID path string true "User id"
// @Param k query int false "Number of items"
// @Param fallback query string false "Behaviour without collaborative signal" Enums(rating, none)
// @Success 200 {object} models.APIResponse{data=models.RecommendationResponse} "Recommended items"
// @Failure 400 {object} models.APIResponse "Invalid k or fallback"
// @Failure 404 {object} models.APIResponse "No collaborative signal and fallback=none"
// @Failure 503 {object} models.APIResponse "Catalog not loaded"
// @Router /recommendations/collaborative/{userID} [get]
func (h *Handler) Collaborative(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	k, apiErr := getIntParam(r, "k", h.config.CollaborativeK)
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}
	req := CollaborativeRequest{
		UserID:   chi.URLParam(r, "userID"),
		K:        k,
		Fallback: r.URL.Query().Get("fallback"),
	}
	if req.Fallback == "" {
		req.Fallback = FallbackRating
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	k = h.clampK(req.K)
	res, err := h.engine.Collaborative(ctx, req.UserID, k)
	if errors.Is(err, recommend.ErrUnknownUser) && req.Fallback == FallbackRating {
		logging.Ctx(ctx).Debug().
			Str("user_id", sanitizeLogValue(req.UserID)).
			Str("reason", err.Error()).
			Msg("Collaborative ranking unavailable, serving top rated")

		fallback, ferr := h.engine.TopRated(ctx, k)
		if ferr != nil {
			respondEngineError(w, r, ferr)
			return
		}
		resp := h.recommendationResponse(fallback, k)
		resp.Strategy = recommend.StrategyCollaborative
		resp.Fallback = recommend.StrategyTopRated
		resp.DegradedReason = err.Error()
		respondSuccess(w, r, start, resp)
		return
	}
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, start, h.recommendationResponse(res, k))
}

// Hybrid blends content similarity with collaborative predictions.
//
// Method: GET
// Path: /api/v1/recommendations/hybrid/{userID}
//
// Query Parameters:
//   - item_id: reference item id
//   - name: reference item name (when no id is given)
//   - k: number of items (default from config)
//
// Without a reference item the user's most recent rated item is used, or the
// first item name in the catalog for users without history.
//
// @Summary Hybrid recommendations
// @Description Blends content similarity with collaborative predictions, degrading to content similarity.
// @Tags Recommendations
// @Produce json
// @Param userID path string true "User id"
// @Param item_id query string false "Reference item id"
// @Param name query string false "Reference item name"
// @Param k query int false "Number of items"
// @Success 200 {object} models.APIResponse{data=models.RecommendationResponse} "Recommended items"
// @Failure 400 {object} models.APIResponse "Invalid k"
// @Failure 404 {object} models.APIResponse "Unknown item or empty catalog"
// @Failure 503 {object} models.APIResponse "Catalog not loaded"
// @Router /recommendations/hybrid/{userID} [get]
func (h *Handler) Hybrid(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	k, apiErr := getIntParam(r, "k", h.config.HybridK)
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}
	req := HybridRequest{
		UserID: chi.URLParam(r, "userID"),
		ItemID: r.URL.Query().Get("item_id"),
		Name:   r.URL.Query().Get("name"),
		K:      k,
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	var itemID string
	var err error
	if req.ItemID == "" && req.Name == "" {
		itemID, err = h.defaultReference(ctx, req.UserID)
	} else {
		itemID, err = h.resolveItemID(ctx, req.ItemID, req.Name)
	}
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	k = h.clampK(req.K)
	res, err := h.engine.Hybrid(ctx, itemID, req.UserID, k)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, start, h.recommendationResponse(res, k))
}

// resolveItemID returns itemID when given, otherwise the id of the item
// named name.
func (h *Handler) resolveItemID(ctx context.Context, itemID, name string) (string, error) {
	if itemID != "" {
		return itemID, nil
	}
	item, err := h.engine.ResolveItem(ctx, name)
	if err != nil {
		return "", err
	}
	return item.ID, nil
}

// errEmptyCatalog is returned when no reference item can be picked because
// the catalog has no items. It matches recommend.ErrNotFound.
var errEmptyCatalog = emptyCatalogError{}

type emptyCatalogError struct{}

func (emptyCatalogError) Error() string { return "catalog has no items" }

func (emptyCatalogError) Is(target error) bool { return target == recommend.ErrNotFound }

// defaultReference picks the reference item when the request names none.
func (h *Handler) defaultReference(ctx context.Context, userID string) (string, error) {
	history, err := h.engine.RecentActivity(ctx, userID, h.config.HistoryLimit)
	if err != nil {
		return "", err
	}
	if len(history) > 0 {
		return history[0].Item.ID, nil
	}

	names, err := h.engine.ItemNames(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", errEmptyCatalog
	}
	item, err := h.engine.ResolveItem(ctx, names[0])
	if err != nil {
		return "", err
	}
	return item.ID, nil
}
