// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/recdash/internal/models"
)

// Health statuses.
const (
	HealthStatusOK       = "ok"
	HealthStatusNotReady = "not_ready"
)

// HealthLive reports that the process is serving.
//
// Method: GET
// Path: /api/v1/health/live
//
// @Summary Liveness check
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthResponse} "Process is serving"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, time.Now(), &models.HealthResponse{
		Status: HealthStatusOK,
		Ready:  h.engine.Ready(),
		Uptime: time.Since(h.startTime),
	})
}

// HealthReady reports whether a catalog snapshot is loaded and trained.
// It answers 503 until then.
//
// Method: GET
// Path: /api/v1/health/ready
//
// @Summary Readiness check
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthResponse} "Catalog loaded and trained"
// @Failure 503 {object} models.APIResponse{data=models.HealthResponse} "Not ready"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	st := h.store.Status()
	resp := &models.HealthResponse{
		Status:  HealthStatusOK,
		Ready:   st.Loaded && h.engine.Ready(),
		Uptime:  time.Since(h.startTime),
		Catalog: st.Source,
	}
	if !resp.Ready {
		resp.Status = HealthStatusNotReady
		respondJSON(w, r, http.StatusServiceUnavailable, &models.APIResponse{
			Status:   models.StatusError,
			Data:     resp,
			Metadata: metadata(r, start),
			Error: &models.APIError{
				Code:    ErrCodeModelUnavailable,
				Message: "Recommendation models are not ready",
			},
		})
		return
	}
	respondSuccess(w, r, start, resp)
}
