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
	"testing"

	"github.com/tomtom215/recdash/internal/catalog"
	"github.com/tomtom215/recdash/internal/recommend"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", &recommend.NotFoundError{ItemID: "x"}, http.StatusNotFound, ErrCodeItemNotFound},
		{"empty catalog", errEmptyCatalog, http.StatusNotFound, ErrCodeItemNotFound},
		{"unknown user", &recommend.UnknownUserError{UserID: "u", Reason: recommend.ReasonGuest}, http.StatusNotFound, ErrCodeUnknownUser},
		{"invalid k", recommend.ErrInvalidTopN, http.StatusBadRequest, ErrCodeValidation},
		{"catalog", fmt.Errorf("%w: %w", recommend.ErrCatalogUnavailable, errors.New("disk")), http.StatusServiceUnavailable, ErrCodeCatalogUnavailable},
		{"not trained", fmt.Errorf("rank: %w", recommend.ErrNotTrained), http.StatusServiceUnavailable, ErrCodeModelUnavailable},
		{"missing algorithm", recommend.ErrAlgorithmMissing, http.StatusServiceUnavailable, ErrCodeModelUnavailable},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, ErrCodeTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, code, msg := classifyError(tt.err)
			if status != tt.wantStatus || code != tt.wantCode {
				t.Errorf("classifyError() = %d %s, want %d %s", status, code, tt.wantStatus, tt.wantCode)
			}
			if msg == "" {
				t.Error("empty message")
			}
		})
	}
}

func TestProductCard_Image(t *testing.T) {
	t.Parallel()
	h := &Handler{config: HandlerConfig{PlaceholderImage: testPlaceholder}}

	tests := []struct {
		image string
		want  string
	}{
		{image: "", want: testPlaceholder},
		{image: "  ", want: testPlaceholder},
		{image: "https://a/1.jpg", want: "https://a/1.jpg"},
		{image: " https://a/1.jpg | https://a/2.jpg", want: "https://a/1.jpg"},
		{image: "|https://a/2.jpg", want: testPlaceholder},
	}
	for _, tt := range tests {
		card := h.productCard(&catalog.Item{ID: "x", ImageURL: tt.image})
		if card.ImageURL != tt.want {
			t.Errorf("productCard(%q).ImageURL = %q, want %q", tt.image, card.ImageURL, tt.want)
		}
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	if got := sanitizeLogValue("a\nb\tc"); got != `a\x0ab\x09c` {
		t.Errorf("sanitizeLogValue() = %q", got)
	}
	if got := sanitizeLogValue("plain"); got != "plain" {
		t.Errorf("sanitizeLogValue(plain) = %q", got)
	}
}
