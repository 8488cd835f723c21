// Recdash - Product Recommendation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package catalog

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Options controls normalization.
type Options struct {
	// MaxRating is the upper bound ratings are clamped to.
	MaxRating float64

	// MaxReportedErrors caps LoadReport.Errors. ErrorCount still counts all of them.
	MaxReportedErrors int

	// BreakerFailures consecutive read failures open the Store's breaker.
	// Reads then fail fast until BreakerCooldown has passed.
	BreakerFailures int
	BreakerCooldown time.Duration
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		MaxRating:         5,
		MaxReportedErrors: 100,
		BreakerFailures:   5,
		BreakerCooldown:   30 * time.Second,
	}
}

// LoadReport summarizes one load.
type LoadReport struct {
	Rows         int                    `json:"rows"`
	SkippedRows  int                    `json:"skipped_rows"`
	Items        int                    `json:"items"`
	Users        int                    `json:"users"`
	Interactions int                    `json:"interactions"`
	ErrorCount   int                    `json:"error_count"`
	Errors       []*MalformedInputError `json:"errors,omitempty"`
	Duration     time.Duration          `json:"duration"`

	maxErrors int
}

func (r *LoadReport) add(line int, field, value, reason string) {
	r.ErrorCount++
	if len(r.Errors) < r.maxErrors {
		r.Errors = append(r.Errors, &MalformedInputError{Line: line, Field: field, Value: value, Reason: reason})
	}
}

type itemAcc struct {
	sum   float64
	count int
}

type pairKey struct {
	user string
	item int
}

type pairAcc struct {
	sum   float64
	count int
	line  int
}

// Normalize validates and aggregates raw rows into a Table. It never fails:
// every problem is recorded in the report and the offending row is repaired
// or skipped.
func Normalize(rows []RawRow, opts Options) (*Table, *LoadReport) {
	start := time.Now()
	if opts.MaxRating <= 0 {
		opts.MaxRating = DefaultOptions().MaxRating
	}
	if opts.MaxReportedErrors < 0 {
		opts.MaxReportedErrors = 0
	}

	report := &LoadReport{Rows: len(rows), maxErrors: opts.MaxReportedErrors}
	t := &Table{
		byID:      make(map[string]int),
		byName:    make(map[string]int),
		ratings:   make(map[string][]Interaction),
		history:   make(map[string][]Interaction),
		maxRating: opts.MaxRating,
	}

	var accs []itemAcc
	pairs := make(map[pairKey]*pairAcc)
	pairOrder := make(map[string][]int)

	for i := range rows {
		row := &rows[i]

		id := strings.TrimSpace(row.ItemID)
		if id == "" {
			report.add(row.Line, "item_id", "", "missing item id, row skipped")
			report.SkippedRows++
			continue
		}

		idx, seen := t.byID[id]
		if !seen {
			idx = len(t.items)
			t.byID[id] = idx
			t.items = append(t.items, Item{ID: id, Index: idx})
			accs = append(accs, itemAcc{})
		}
		mergeAttributes(&t.items[idx], row)

		if n, ok := parseReviewCount(row, report); ok && n > t.items[idx].ReviewCount {
			t.items[idx].ReviewCount = n
		}

		rating, hasRating := parseRating(row, opts.MaxRating, report)
		if hasRating {
			accs[idx].sum += rating
			accs[idx].count++
		}

		user := strings.TrimSpace(row.UserID)
		switch {
		case user == "":
			continue
		case user == GuestUserID:
			report.add(row.Line, "user_id", user, "reserved guest id, interaction dropped")
			continue
		case !hasRating:
			if strings.TrimSpace(row.Rating) == "" {
				report.add(row.Line, "rating", "", "missing rating, interaction dropped")
			}
			continue
		}

		key := pairKey{user: user, item: idx}
		p, ok := pairs[key]
		if !ok {
			p = &pairAcc{line: row.Line}
			pairs[key] = p
			pairOrder[user] = append(pairOrder[user], idx)
		}
		p.sum += rating
		p.count++

		t.history[user] = append(t.history[user], Interaction{
			UserID: user, ItemIndex: idx, ItemID: id, Rating: rating, Line: row.Line,
		})
	}

	for i := range t.items {
		it := &t.items[i]
		if accs[i].count > 0 {
			it.Rating = accs[i].sum / float64(accs[i].count)
		}
		it.Popularity = PopularityScore(it.Rating, it.ReviewCount)
		if it.Name != "" {
			if _, dup := t.byName[it.Name]; !dup {
				t.byName[it.Name] = i
				t.names = append(t.names, it.Name)
			}
		}
	}
	sort.Strings(t.names)

	for user, order := range pairOrder {
		list := make([]Interaction, 0, len(order))
		for _, idx := range order {
			p := pairs[pairKey{user: user, item: idx}]
			list = append(list, Interaction{
				UserID:    user,
				ItemIndex: idx,
				ItemID:    t.items[idx].ID,
				Rating:    p.sum / float64(p.count),
				Line:      p.line,
			})
		}
		t.ratings[user] = list
		t.users = append(t.users, user)
		t.interactions += len(list)
	}
	sort.Strings(t.users)

	t.loadedAt = time.Now()
	report.Items = len(t.items)
	report.Users = len(t.users)
	report.Interactions = t.interactions
	report.Duration = time.Since(start)
	return t, report
}

// PopularityScore weights a mean rating by how many reviews back it:
// rating * ln(2 + reviews). Without reviews the rating alone orders items.
func PopularityScore(rating float64, reviewCount int) float64 {
	if rating <= 0 {
		return 0
	}
	if reviewCount < 0 {
		reviewCount = 0
	}
	return rating * math.Log(2+float64(reviewCount))
}

// mergeAttributes fills attributes the item does not have yet. The first
// non-empty value for each attribute wins.
func mergeAttributes(it *Item, row *RawRow) {
	if it.Name == "" {
		it.Name = strings.TrimSpace(row.Name)
	}
	if it.Brand == "" {
		it.Brand = strings.TrimSpace(row.Brand)
	}
	if it.Category == "" {
		it.Category = strings.TrimSpace(row.Category)
	}
	if it.Description == "" {
		it.Description = strings.TrimSpace(row.Description)
	}
	if it.ImageURL == "" {
		it.ImageURL = FirstImage(row.ImageURL)
	}
	if len(it.Tags) == 0 {
		it.Tags = ParseTags(row.Tags)
	}
}

func parseRating(row *RawRow, maxRating float64, report *LoadReport) (float64, bool) {
	raw := strings.TrimSpace(row.Rating)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		report.add(row.Line, "rating", raw, "not a number, rating ignored")
		return 0, false
	}
	switch {
	case v < 0:
		report.add(row.Line, "rating", raw, "below 0, clamped")
		v = 0
	case v > maxRating:
		report.add(row.Line, "rating", raw, "above "+strconv.FormatFloat(maxRating, 'g', -1, 64)+", clamped")
		v = maxRating
	}
	return v, true
}

func parseReviewCount(row *RawRow, report *LoadReport) (int, bool) {
	raw := strings.TrimSpace(row.ReviewCount)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		// Exports from dataframe tools often write counts as floats ("12.0").
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 {
			report.add(row.Line, "review_count", raw, "not a number, ignored")
			return 0, false
		}
		n = int(f)
	}
	if n < 0 {
		report.add(row.Line, "review_count", raw, "negative, ignored")
		return 0, false
	}
	return n, true
}

// ParseTags splits a delimited tag string into lower-case, trimmed, unique
// tags in first-seen order. It returns nil when nothing survives.
func ParseTags(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '|' || r == ';'
	})
	var tags []string
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tag := strings.ToLower(strings.TrimSpace(f))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// FirstImage returns the first '|' separated segment of a raw image field.
func FirstImage(raw string) string {
	first, _, _ := strings.Cut(raw, "|")
	return strings.TrimSpace(first)
}
