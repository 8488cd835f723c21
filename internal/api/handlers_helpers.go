// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/recdash/internal/catalog"
	"github.com/tomtom215/recdash/internal/logging"
	"github.com/tomtom215/recdash/internal/models"
	"github.com/tomtom215/recdash/internal/recommend"
	"github.com/tomtom215/recdash/internal/validation"
)

// API error codes.
const (
	ErrCodeValidation         = validation.CodeValidation
	ErrCodeItemNotFound       = "ITEM_NOT_FOUND"
	ErrCodeUnknownUser        = "UNKNOWN_USER"
	ErrCodeCatalogUnavailable = "CATALOG_UNAVAILABLE"
	ErrCodeModelUnavailable   = "MODEL_UNAVAILABLE"
	ErrCodeTimeout            = "TIMEOUT"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeRouteNotFound      = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// sanitizeLogValue replaces control characters so user input cannot forge log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, r *http.Request, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Vary", "Accept-Encoding")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in a success envelope.
func respondSuccess(w http.ResponseWriter, r *http.Request, start time.Time, data any) {
	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status:   models.StatusSuccess,
		Data:     data,
		Metadata: metadata(r, start),
	})
}

// respondError sends an error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	respondJSON(w, r, status, &models.APIResponse{
		Status:   models.StatusError,
		Metadata: metadata(r, time.Time{}),
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func metadata(r *http.Request, start time.Time) models.Metadata {
	md := models.Metadata{
		Timestamp: time.Now().UTC(),
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
	if !start.IsZero() {
		md.QueryTimeMS = time.Since(start).Milliseconds()
	}
	return md
}

// respondAPIError sends a prepared API error.
func respondAPIError(w http.ResponseWriter, r *http.Request, status int, apiErr *models.APIError) {
	respondError(w, r, status, apiErr.Code, apiErr.Message, apiErr.Details)
}

// respondEngineError maps an engine or catalog error to its HTTP status.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := classifyError(err)

	event := logging.Ctx(r.Context()).Debug()
	if status >= http.StatusInternalServerError {
		event = logging.Ctx(r.Context()).Error()
	}
	event.Str("code", code).Str("error", sanitizeLogValue(err.Error())).Msg("API error")

	respondError(w, r, status, code, message, nil)
}

// classifyError returns the status, code and client message for err.
func classifyError(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, recommend.ErrNotFound):
		return http.StatusNotFound, ErrCodeItemNotFound, err.Error()
	case errors.Is(err, recommend.ErrUnknownUser):
		return http.StatusNotFound, ErrCodeUnknownUser, err.Error()
	case errors.Is(err, recommend.ErrInvalidTopN):
		return http.StatusBadRequest, ErrCodeValidation, err.Error()
	case errors.Is(err, recommend.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable, ErrCodeCatalogUnavailable, "Catalog is unavailable"
	case errors.Is(err, recommend.ErrNotTrained), errors.Is(err, recommend.ErrAlgorithmMissing):
		return http.StatusServiceUnavailable, ErrCodeModelUnavailable, "Recommendation model is unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrCodeTimeout, "Request timed out"
	default:
		return http.StatusInternalServerError, ErrCodeInternal, "Internal error"
	}
}

// validateRequest validates a struct using go-playground/validator.
func validateRequest(v any) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// getIntParam extracts an integer query parameter with a default value.
// A present but non-numeric value is a validation error.
func getIntParam(r *http.Request, key string, defaultValue int) (int, *models.APIError) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, &models.APIError{
			Code:    ErrCodeValidation,
			Message: fmt.Sprintf("%s must be an integer", key),
			Details: map[string]any{"field": key},
		}
	}
	return intValue, nil
}

// clampK caps k at the configured maximum.
func (h *Handler) clampK(k int) int {
	return min(k, h.config.MaxK)
}

// requestContext bounds a ranking call by the configured timeout.
func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.config.RequestTimeout)
}

// productCard converts an item for display. Only the first of several
// pipe-separated image references is shown.
func (h *Handler) productCard(item *catalog.Item) models.ProductCard {
	image := strings.TrimSpace(strings.Split(item.ImageURL, "|")[0])
	if image == "" {
		image = h.config.PlaceholderImage
	}
	return models.ProductCard{
		ID:          item.ID,
		Name:        item.Name,
		Brand:       item.Brand,
		Category:    item.Category,
		Tags:        item.Tags,
		Rating:      item.Rating,
		ReviewCount: item.ReviewCount,
		Popularity:  item.Popularity,
		ImageURL:    image,
	}
}

func (h *Handler) scoredCard(si *recommend.ScoredItem) models.ProductCard {
	card := h.productCard(&si.Item)
	score := si.Score
	card.Score = &score
	card.Scores = si.Scores
	return card
}

// recommendationResponse converts an engine result.
func (h *Handler) recommendationResponse(res *recommend.Result, k int) *models.RecommendationResponse {
	resp := &models.RecommendationResponse{
		Strategy:        res.Strategy,
		K:               k,
		Items:           make([]models.ProductCard, 0, len(res.Items)),
		Degraded:        res.Degraded,
		CatalogLoadedAt: res.CatalogLoadedAt,
	}
	for i := range res.Items {
		resp.Items = append(resp.Items, h.scoredCard(&res.Items[i]))
	}
	if res.Reference != nil {
		ref := h.productCard(res.Reference)
		resp.Reference = &ref
	}
	if res.Degradation != nil {
		resp.Fallback = res.Degradation.Fallback
		if res.Degradation.Cause != nil {
			resp.DegradedReason = res.Degradation.Cause.Error()
		}
	}
	return resp
}
