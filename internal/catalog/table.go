// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package catalog

import (
	"slices"
	"time"
)

// GuestUserID is the sentinel for an anonymous visitor with no history.
const GuestUserID = "0_guest"

// RawRow is one input record before validation. Line is 1-based and counts
// the header, so it matches what an editor shows.
type RawRow struct {
	Line        int
	UserID      string
	ItemID      string
	Name        string
	Brand       string
	Category    string
	Tags        string
	ImageURL    string
	Rating      string
	ReviewCount string
	Description string
}

// Item is one catalog entry, aggregated over every row that mentions it.
type Item struct {
	ID          string   `json:"id"`
	Index       int      `json:"-"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	ImageURL    string   `json:"image_url,omitempty"`
	Description string   `json:"description,omitempty"`
	Popularity  float64  `json:"popularity"`
}

// Interaction is a user's rating of an item. For a (user, item) pair seen
// more than once, Rating is the mean of the observed ratings.
type Interaction struct {
	UserID    string  `json:"user_id"`
	ItemIndex int     `json:"-"`
	ItemID    string  `json:"item_id"`
	Rating    float64 `json:"rating"`
	Line      int     `json:"line"`
}

// Table is the loaded catalog. It is never modified after Normalize returns
// it and is safe for concurrent readers. Accessors return copies.
type Table struct {
	items  []Item
	byID   map[string]int
	byName map[string]int
	names  []string

	users   []string
	ratings map[string][]Interaction
	history map[string][]Interaction

	interactions int
	maxRating    float64
	loadedAt     time.Time
}

// Len returns the number of items.
func (t *Table) Len() int {
	return len(t.items)
}

// Item returns the item at index i, which must be in [0, Len()).
func (t *Table) Item(i int) Item {
	return cloneItem(t.items[i])
}

// Items returns all items in insertion order.
func (t *Table) Items() []Item {
	out := make([]Item, len(t.items))
	for i := range t.items {
		out[i] = cloneItem(t.items[i])
	}
	return out
}

// ItemByID looks an item up by id.
func (t *Table) ItemByID(id string) (Item, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Item{}, false
	}
	return cloneItem(t.items[i]), true
}

// IndexOf returns the insertion index of the item with the given id.
func (t *Table) IndexOf(id string) (int, bool) {
	i, ok := t.byID[id]
	return i, ok
}

// ItemByName returns the first item carrying the exact name.
func (t *Table) ItemByName(name string) (Item, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Item{}, false
	}
	return cloneItem(t.items[i]), true
}

// Names returns the distinct non-empty item names, sorted.
func (t *Table) Names() []string {
	return slices.Clone(t.names)
}

// Users returns the ids of users with at least one interaction, sorted.
// The guest sentinel is never included.
func (t *Table) Users() []string {
	return slices.Clone(t.users)
}

// HasUser reports whether the user has at least one interaction.
func (t *Table) HasUser(userID string) bool {
	_, ok := t.ratings[userID]
	return ok
}

// UserRatings returns the user's de-duplicated ratings in first-seen order.
func (t *Table) UserRatings(userID string) []Interaction {
	return slices.Clone(t.ratings[userID])
}

// RecentActivity returns up to n of the user's most recent rows in file order.
// Duplicate rows are kept; this is what the user actually did.
func (t *Table) RecentActivity(userID string, n int) []Interaction {
	h := t.history[userID]
	if n <= 0 {
		return nil
	}
	if n < len(h) {
		h = h[len(h)-n:]
	}
	return slices.Clone(h)
}

// NumInteractions returns the number of distinct (user, item) pairs.
func (t *Table) NumInteractions() int {
	return t.interactions
}

// MaxRating is the upper bound ratings were clamped to.
func (t *Table) MaxRating() float64 {
	return t.maxRating
}

// LoadedAt is when the table was built.
func (t *Table) LoadedAt() time.Time {
	return t.loadedAt
}

// ForEachUser calls fn with every user and their ratings. The slice passed to
// fn is shared and must not be modified or retained.
func (t *Table) ForEachUser(fn func(userID string, ratings []Interaction)) {
	for _, u := range t.users {
		fn(u, t.ratings[u])
	}
}

func cloneItem(it Item) Item {
	it.Tags = slices.Clone(it.Tags)
	return it
}
