package catalog

import (
	"math"
	"testing"

	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/cloo-solutions/onetool/internal/fuzzy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveThreshold(t *testing.T) {
	v, err := ResolveThreshold(0)
	require.NoError(t, err)
	assert.Equal(t, fuzzy.DefaultThreshold, v)

	v, err = ResolveThreshold(0.25)
	require.NoError(t, err)
	assert.Equal(t, 0.25, v)

	v, err = ResolveThreshold(1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	for _, bad := range []float64{-0.1, 1.5, math.NaN()} {
		_, err = ResolveThreshold(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidThreshold)
	}
}

func TestResolveSearch(t *testing.T) {
	v, err := ResolveSearch(SearchParams{Category: domain.ToolCategoryHealth, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, fuzzy.DefaultThreshold, v)

	_, err = ResolveSearch(SearchParams{Category: "games"})
	assert.ErrorIs(t, err, domain.ErrInvalidToolCategory)

	_, err = ResolveSearch(SearchParams{Limit: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidSearchLimit)

	_, err = ResolveSearch(SearchParams{Threshold: 2})
	assert.ErrorIs(t, err, domain.ErrInvalidThreshold)
}

func TestSortBySlug(t *testing.T) {
	tools := Builtin()
	first := tools[0].Slug

	sorted := SortBySlug(tools)

	require.Len(t, sorted, len(tools))
	for i := 1; i < len(sorted); i++ {
		assert.Less(t, sorted[i-1].Slug, sorted[i].Slug)
	}
	assert.Equal(t, first, tools[0].Slug)
}
