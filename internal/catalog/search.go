package catalog

import (
	"math"
	"slices"
	"strings"

	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/cloo-solutions/onetool/internal/fuzzy"
)

// SearchParams are the caller-supplied knobs of a catalog search.
type SearchParams struct {
	Category  domain.ToolCategory
	Threshold float64
	Limit     int
}

// ResolveSearch validates params and returns the threshold to match with.
// A zero threshold means fuzzy.DefaultThreshold.
func ResolveSearch(p SearchParams) (float64, error) {
	if p.Category != "" && !p.Category.IsValid() {
		return 0, domain.ErrInvalidToolCategory
	}
	if p.Limit < 0 {
		return 0, domain.ErrInvalidSearchLimit
	}
	return ResolveThreshold(p.Threshold)
}

// ResolveThreshold maps 0 to the default and rejects values outside [0,1].
func ResolveThreshold(t float64) (float64, error) {
	if math.IsNaN(t) || t < 0 || t > 1 {
		return 0, domain.ErrInvalidThreshold
	}
	if t == 0 {
		return fuzzy.DefaultThreshold, nil
	}
	return t, nil
}

// SortBySlug returns tools ordered by slug, the order every search runs over.
// The input slice is left untouched.
func SortBySlug(tools []*domain.Tool) []*domain.Tool {
	out := slices.Clone(tools)
	slices.SortFunc(out, func(a, b *domain.Tool) int {
		return strings.Compare(a.Slug, b.Slug)
	})
	return out
}
