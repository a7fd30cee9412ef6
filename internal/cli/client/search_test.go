package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfflineSearch_Substring(t *testing.T) {
	resp, err := offlineSearch("calc", searchOptions{})
	require.NoError(t, err)

	assert.Equal(t, "substring", resp.Phase)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, resp.Total, len(resp.Results))
	for _, r := range resp.Results {
		assert.Nil(t, r.Distance)
	}
}

func TestOfflineSearch_FuzzyFallbackReportsDistance(t *testing.T) {
	resp, err := offlineSearch("bmi calculater", searchOptions{})
	require.NoError(t, err)

	assert.Equal(t, "fuzzy", resp.Phase)
	require.NotEmpty(t, resp.Results)
	require.NotNil(t, resp.Results[0].Distance)
	assert.Equal(t, "BMI Calculator", resp.Results[0].Title)
	assert.Equal(t, 1, *resp.Results[0].Distance)
}

func TestOfflineSearch_CategoryAndLimit(t *testing.T) {
	resp, err := offlineSearch("", searchOptions{category: "finance", limit: 2})
	require.NoError(t, err)

	assert.Equal(t, "all", resp.Phase)
	assert.Len(t, resp.Results, 2)
	assert.Greater(t, resp.Total, 2)
	for _, r := range resp.Results {
		assert.Equal(t, "finance", r.Category)
	}
}

func TestOfflineSearch_NoMatch(t *testing.T) {
	resp, err := offlineSearch("zzzzzzzzzzzzzzzzzzzz", searchOptions{})
	require.NoError(t, err)

	assert.Equal(t, "fuzzy", resp.Phase)
	assert.Empty(t, resp.Results)
	assert.Zero(t, resp.Total)
}

func TestOfflineSearch_SlugOrder(t *testing.T) {
	resp, err := offlineSearch("calculator", searchOptions{})
	require.NoError(t, err)

	require.Greater(t, len(resp.Results), 1)
	for i := 1; i < len(resp.Results); i++ {
		assert.Less(t, resp.Results[i-1].Slug, resp.Results[i].Slug)
	}
}

func TestOfflineSearch_RejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name string
		opts searchOptions
		want error
	}{
		{"unknown category", searchOptions{category: "games"}, domain.ErrInvalidToolCategory},
		{"negative threshold", searchOptions{threshold: -0.2}, domain.ErrInvalidThreshold},
		{"threshold above one", searchOptions{threshold: 1.5}, domain.ErrInvalidThreshold},
		{"negative limit", searchOptions{limit: -1}, domain.ErrInvalidSearchLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := offlineSearch("pdf", tt.opts)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, resp)
		})
	}
}

func TestSendSearchFeedback(t *testing.T) {
	var got SearchFeedbackRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/feedback", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	api := NewAPIClientWithConfig(testKey, srv.URL)
	require.NoError(t, sendSearchFeedback(context.Background(), api, "search-1", "bmi-calculator"))
	assert.Equal(t, SearchFeedbackRequest{SearchID: "search-1", Slug: "bmi-calculator"}, got)

	assert.NoError(t, sendSearchFeedback(context.Background(), nil, "search-1", "bmi-calculator"))
}
