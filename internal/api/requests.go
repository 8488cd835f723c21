// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package api

// TopRatedRequest holds the parameters of the popularity ranking.
type TopRatedRequest struct {
	K int `query:"k" validate:"min=1"`
}

// ContentRequest holds the parameters of the similar-items ranking. The
// reference item comes from the path, item_id or name, in that order.
type ContentRequest struct {
	ItemID string `query:"item_id" validate:"omitempty,ident"`
	Name   string `query:"name" validate:"omitempty,max=512"`
	K      int    `query:"k" validate:"min=1"`
}

// CollaborativeRequest holds the parameters of the user-based ranking.
// Fallback selects what to serve when the user has no usable neighbours.
type CollaborativeRequest struct {
	UserID   string `query:"user_id" validate:"ident"`
	K        int    `query:"k" validate:"min=1"`
	Fallback string `query:"fallback" validate:"oneof=none rating"`
}

// HybridRequest holds the parameters of the blended ranking.
type HybridRequest struct {
	UserID string `query:"user_id" validate:"ident"`
	ItemID string `query:"item_id" validate:"omitempty,ident"`
	Name   string `query:"name" validate:"omitempty,max=512"`
	K      int    `query:"k" validate:"min=1"`
}

// HistoryRequest holds the parameters of the recent activity listing.
type HistoryRequest struct {
	UserID string `query:"user_id" validate:"ident"`
	Limit  int    `query:"limit" validate:"min=1,max=100"`
}

// ItemsRequest holds the parameters of the catalog search.
type ItemsRequest struct {
	Query string `query:"q" validate:"max=256"`
	Limit int    `query:"limit" validate:"min=1,max=500"`
}

// UserRequest identifies a user from the path.
type UserRequest struct {
	UserID string `query:"user_id" validate:"ident"`
}
