// Package fuzzy implements the tool search matcher: a case-insensitive
// substring pass with a Levenshtein fallback when nothing matches literally.
package fuzzy

import (
	"math"
	"slices"
	"strings"
)

// DefaultThreshold is the maximum normalized edit distance for a fuzzy match.
const DefaultThreshold = 0.4

// Item is anything the matcher can search over.
type Item interface {
	SearchTitle() string
	SearchCategory() string
	// SearchDescription is optional and may return "". It is not matched on.
	SearchDescription() string
}

// Phase reports which stage of the search produced a result.
type Phase string

const (
	// PhaseAll means the query was empty and the input was returned as is.
	PhaseAll Phase = "all"
	// PhaseSubstring means at least one title or category contained the query.
	PhaseSubstring Phase = "substring"
	// PhaseFuzzy means results came from the edit-distance fallback.
	PhaseFuzzy Phase = "fuzzy"
)

// Match pairs a fuzzy result with its raw edit distance to the query.
type Match[T Item] struct {
	Item     T
	Distance int
}

// Result is the outcome of Rank.
type Result[T Item] struct {
	Phase Phase
	Items []T
	// Matches is only populated for PhaseFuzzy, in the same order as Items.
	Matches []Match[T]
}

// Search filters items with the default threshold.
func Search[T Item](query string, items []T) []T {
	return Rank(query, items, DefaultThreshold).Items
}

// SearchWithThreshold filters items, keeping fuzzy matches whose normalized
// distance is strictly below threshold.
func SearchWithThreshold[T Item](query string, items []T, threshold float64) []T {
	return Rank(query, items, threshold).Items
}

// Rank runs the two-phase search and reports which phase answered.
//
// An empty query returns items unchanged. Otherwise every item whose title or
// category contains the query (case-insensitively) is returned in input
// order; only if there are none does the fallback compare the query against
// each title by edit distance, sorted ascending with ties kept in input order.
func Rank[T Item](query string, items []T, threshold float64) Result[T] {
	if query == "" {
		return Result[T]{Phase: PhaseAll, Items: items}
	}

	q := strings.ToLower(query)

	var hits []T
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.SearchTitle()), q) ||
			strings.Contains(strings.ToLower(item.SearchCategory()), q) {
			hits = append(hits, item)
		}
	}
	if len(hits) > 0 {
		return Result[T]{Phase: PhaseSubstring, Items: hits}
	}

	threshold = clampThreshold(threshold)
	qr := []rune(q)

	var matches []Match[T]
	for _, item := range items {
		title := []rune(strings.ToLower(item.SearchTitle()))
		d := distanceRunes(qr, title)
		// query is non-empty, so the denominator is at least 1
		score := float64(d) / float64(max(len(title), len(qr)))
		if score < threshold {
			matches = append(matches, Match[T]{Item: item, Distance: d})
		}
	}

	slices.SortStableFunc(matches, func(a, b Match[T]) int {
		return a.Distance - b.Distance
	})

	out := make([]T, len(matches))
	for i, m := range matches {
		out[i] = m.Item
	}
	return Result[T]{Phase: PhaseFuzzy, Items: out, Matches: matches}
}

func clampThreshold(t float64) float64 {
	switch {
	case math.IsNaN(t):
		return DefaultThreshold
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}
