package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloo-solutions/onetool/internal/api/middleware"
	"github.com/cloo-solutions/onetool/internal/catalog"
	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/cloo-solutions/onetool/internal/fuzzy"
	"github.com/cloo-solutions/onetool/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) List(ctx context.Context, input service.ListToolsInput) (*service.ListToolsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListToolsOutput), args.Error(1)
}

func (m *MockCatalogService) Get(ctx context.Context, slug string) (*domain.Tool, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tool), args.Error(1)
}

func (m *MockCatalogService) Categories(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCatalogService) Search(ctx context.Context, input service.SearchInput) (*service.SearchOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SearchOutput), args.Error(1)
}

func (m *MockCatalogService) RecordSelection(ctx context.Context, accountID, searchID, slug string) error {
	args := m.Called(ctx, accountID, searchID, slug)
	return args.Error(0)
}

func newTestTool(slug, title string, category domain.ToolCategory) *domain.Tool {
	return domain.NewTool("id-"+slug, slug, title, category, "desc", "/tools/"+slug, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func withAccount(req *http.Request, accountID string) *http.Request {
	return req.WithContext(middleware.WithAccountID(req.Context(), accountID))
}

func TestToolHandler_List(t *testing.T) {
	mockSvc := new(MockCatalogService)
	handler := NewToolHandler(mockSvc)

	mockSvc.On("List", mock.Anything, service.ListToolsInput{
		Category: domain.ToolCategoryFinance,
		Cursor:   "abc",
		Limit:    2,
	}).Return(&service.ListToolsOutput{
		Items:   []*domain.Tool{newTestTool("sip-calculator", "SIP Calculator", domain.ToolCategoryFinance)},
		Cursor:  "next",
		HasMore: true,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/tools?category=finance&cursor=abc&limit=2", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w.Body.Bytes())
	assert.Equal(t, "next", data["cursor"])
	assert.Equal(t, true, data["has_more"])
	items := data["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "sip-calculator", item["slug"])
	assert.Equal(t, "Finance", item["category_label"])
	assert.Equal(t, "2026-01-02T03:04:05Z", item["updated_at"])
	mockSvc.AssertExpectations(t)
}

func TestToolHandler_List_InvalidLimit(t *testing.T) {
	handler := NewToolHandler(new(MockCatalogService))

	for _, q := range []string{"limit=abc", "limit=-1"} {
		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/tools?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestToolHandler_List_InvalidCategory(t *testing.T) {
	mockSvc := new(MockCatalogService)
	handler := NewToolHandler(mockSvc)

	mockSvc.On("List", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidToolCategory)

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest(http.MethodGet, "/tools?category=nope", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid tool category")
}

func TestToolHandler_Get(t *testing.T) {
	mockSvc := new(MockCatalogService)
	handler := NewToolHandler(mockSvc)

	mockSvc.On("Get", mock.Anything, "bmi-calculator").Return(newTestTool("bmi-calculator", "BMI Calculator", domain.ToolCategoryHealth), nil)
	mockSvc.On("Get", mock.Anything, "missing").Return(nil, domain.ErrToolNotFound)

	w := httptest.NewRecorder()
	handler.Get(w, withURLParam(httptest.NewRequest(http.MethodGet, "/tools/bmi-calculator", nil), "slug", "bmi-calculator"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "BMI Calculator", decodeData(t, w.Body.Bytes())["title"])

	w = httptest.NewRecorder()
	handler.Get(w, withURLParam(httptest.NewRequest(http.MethodGet, "/tools/missing", nil), "slug", "missing"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToolHandler_Categories(t *testing.T) {
	mockSvc := new(MockCatalogService)
	handler := NewToolHandler(mockSvc)

	mockSvc.On("Categories", mock.Anything).Return([]catalog.Category{
		{ID: domain.ToolCategoryFinance, Label: "Finance", Count: 3},
	}, nil)

	w := httptest.NewRecorder()
	handler.Categories(w, httptest.NewRequest(http.MethodGet, "/tools/categories", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []catalog.Category `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 3, resp.Data[0].Count)
}

func TestToolHandler_Search_Fuzzy(t *testing.T) {
	mockSvc := new(MockCatalogService)
	handler := NewToolHandler(mockSvc)

	d := 1
	mockSvc.On("Search", mock.Anything, service.SearchInput{
		AccountID: "acct-1",
		Query:     "budg3t",
		Threshold: 0.5,
		Limit:     5,
	}).Return(&service.SearchOutput{
		SearchID: "search-1",
		Phase:    fuzzy.PhaseFuzzy,
		Total:    1,
		Results: []service.SearchHit{
			{Tool: newTestTool("smart-budget", "Smart Budget", domain.ToolCategoryFinance), Distance: &d},
		},
	}, nil)

	req := withAccount(httptest.NewRequest(http.MethodGet, "/search?q=budg3t&threshold=0.5&limit=5", nil), "acct-1")
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w.Body.Bytes())
	assert.Equal(t, "search-1", data["search_id"])
	assert.Equal(t, "fuzzy", data["phase"])
	assert.Equal(t, "budg3t", data["query"])
	results := data["results"].([]interface{})
	require.Len(t, results, 1)
	hit := results[0].(map[string]interface{})
	assert.Equal(t, "smart-budget", hit["slug"])
	assert.Equal(t, float64(1), hit["distance"])
	mockSvc.AssertExpectations(t)
}

func TestToolHandler_Search_SubstringOmitsDistance(t *testing.T) {
	mockSvc := new(MockCatalogService)
	handler := NewToolHandler(mockSvc)

	mockSvc.On("Search", mock.Anything, mock.MatchedBy(func(in service.SearchInput) bool {
		return in.AccountID == "" && in.Query == "budget"
	})).Return(&service.SearchOutput{
		Phase:   fuzzy.PhaseSubstring,
		Total:   1,
		Results: []service.SearchHit{{Tool: newTestTool("smart-budget", "Smart Budget", domain.ToolCategoryFinance)}},
	}, nil)

	w := httptest.NewRecorder()
	handler.Search(w, httptest.NewRequest(http.MethodGet, "/search?q=budget", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w.Body.Bytes())
	_, hasID := data["search_id"]
	assert.False(t, hasID)
	hit := data["results"].([]interface{})[0].(map[string]interface{})
	_, hasDistance := hit["distance"]
	assert.False(t, hasDistance)
}

func TestToolHandler_Search_InvalidThreshold(t *testing.T) {
	mockSvc := new(MockCatalogService)
	handler := NewToolHandler(mockSvc)

	w := httptest.NewRecorder()
	handler.Search(w, httptest.NewRequest(http.MethodGet, "/search?q=x&threshold=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockSvc.On("Search", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidThreshold)

	w = httptest.NewRecorder()
	handler.Search(w, httptest.NewRequest(http.MethodGet, "/search?q=x&threshold=2", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "threshold")
}

func TestToolHandler_SearchFeedback(t *testing.T) {
	mockSvc := new(MockCatalogService)
	handler := NewToolHandler(mockSvc)

	mockSvc.On("RecordSelection", mock.Anything, "acct-1", "search-1", "smart-budget").Return(nil)

	body := []byte(`{"search_id":"search-1","slug":"smart-budget"}`)
	req := withAccount(httptest.NewRequest(http.MethodPost, "/search/feedback", bytes.NewReader(body)), "acct-1")
	w := httptest.NewRecorder()

	handler.SearchFeedback(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestToolHandler_SearchFeedback_Errors(t *testing.T) {
	mockSvc := new(MockCatalogService)
	handler := NewToolHandler(mockSvc)

	w := httptest.NewRecorder()
	handler.SearchFeedback(w, httptest.NewRequest(http.MethodPost, "/search/feedback", bytes.NewReader([]byte(`{}`))))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	handler.SearchFeedback(w, withAccount(httptest.NewRequest(http.MethodPost, "/search/feedback", bytes.NewReader([]byte(`{"slug":"x"}`))), "acct-1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "search_id is required")

	mockSvc.On("RecordSelection", mock.Anything, "acct-1", "gone", "x").Return(domain.ErrSearchLogNotFound)

	w = httptest.NewRecorder()
	handler.SearchFeedback(w, withAccount(httptest.NewRequest(http.MethodPost, "/search/feedback", bytes.NewReader([]byte(`{"search_id":"gone","slug":"x"}`))), "acct-1"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
