// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/recdash/internal/logging"
	"github.com/tomtom215/recdash/internal/metrics"
	"github.com/tomtom215/recdash/internal/models"
	"github.com/tomtom215/recdash/internal/recommend"
)

// CatalogStatus reports the loaded catalog and the trained models.
//
// Method: GET
// Path: /api/v1/catalog/status
//
// @Summary Catalog status
// @Tags Catalog
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.CatalogStatusResponse} "Catalog and model status"
// @Router /catalog/status [get]
func (h *Handler) CatalogStatus(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, time.Now(), h.catalogStatus())
}

// CatalogReload re-reads the catalog source and retrains every model.
//
// Method: POST
// Path: /api/v1/catalog/reload
//
// @Summary Reload the catalog
// @Description Re-reads the catalog source and retrains every model.
// @Tags Catalog
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.CatalogStatusResponse} "Status after the reload"
// @Failure 429 {object} models.APIResponse "Rate limit exceeded"
// @Failure 503 {object} models.APIResponse "Catalog source unavailable"
// @Router /catalog/reload [post]
func (h *Handler) CatalogReload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	metrics.RecordCatalogInvalidation("api")
	if _, err := h.store.Reload(ctx); err != nil {
		respondEngineError(w, r, fmt.Errorf("%w: %w", recommend.ErrCatalogUnavailable, err))
		return
	}
	if err := h.engine.Train(ctx); err != nil {
		respondEngineError(w, r, err)
		return
	}

	status := h.catalogStatus()
	logging.Ctx(ctx).Info().
		Uint64("catalog_version", status.Version).
		Int("model_version", status.Model.ModelVersion).
		Dur("duration", time.Since(start)).
		Msg("Catalog reloaded")

	respondSuccess(w, r, start, status)
}

func (h *Handler) catalogStatus() *models.CatalogStatusResponse {
	st := h.store.Status()
	resp := &models.CatalogStatusResponse{
		Source:    st.Source,
		Loaded:    st.Loaded,
		Version:   st.Version,
		Report:    st.Report,
		LastError: st.LastErr,
		Breaker:   st.Breaker,
		Model:     h.engine.GetStatus(),
	}
	if !st.LoadedAt.IsZero() {
		loadedAt := st.LoadedAt
		resp.LoadedAt = &loadedAt
	}
	return resp
}
