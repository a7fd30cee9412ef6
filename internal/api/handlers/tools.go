package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cloo-solutions/onetool/internal/api"
	"github.com/cloo-solutions/onetool/internal/api/middleware"
	"github.com/cloo-solutions/onetool/internal/catalog"
	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/cloo-solutions/onetool/internal/service"
	"github.com/go-chi/chi/v5"
)

type CatalogService interface {
	List(ctx context.Context, input service.ListToolsInput) (*service.ListToolsOutput, error)
	Get(ctx context.Context, slug string) (*domain.Tool, error)
	Categories(ctx context.Context) ([]catalog.Category, error)
	Search(ctx context.Context, input service.SearchInput) (*service.SearchOutput, error)
	RecordSelection(ctx context.Context, accountID, searchID, slug string) error
}

type ToolHandler struct {
	svc CatalogService
}

func NewToolHandler(svc CatalogService) *ToolHandler {
	return &ToolHandler{svc: svc}
}

type ToolResponse struct {
	ID            string   `json:"id"`
	Slug          string   `json:"slug"`
	Title         string   `json:"title"`
	Category      string   `json:"category"`
	CategoryLabel string   `json:"category_label"`
	Description   string   `json:"description,omitempty"`
	Path          string   `json:"path"`
	Keywords      []string `json:"keywords,omitempty"`
	UpdatedAt     string   `json:"updated_at"`
}

type ListToolsResponse struct {
	Items   []*ToolResponse `json:"items"`
	Cursor  string          `json:"cursor,omitempty"`
	HasMore bool            `json:"has_more"`
}

type SearchResultResponse struct {
	*ToolResponse
	Distance *int `json:"distance,omitempty"`
}

type SearchResponse struct {
	SearchID string                  `json:"search_id,omitempty"`
	Query    string                  `json:"query"`
	Phase    string                  `json:"phase"`
	Total    int                     `json:"total"`
	Results  []*SearchResultResponse `json:"results"`
}

type SearchFeedbackRequest struct {
	SearchID string `json:"search_id"`
	Slug     string `json:"slug"`
}

func toolToResponse(t *domain.Tool) *ToolResponse {
	return &ToolResponse{
		ID:            t.ID,
		Slug:          t.Slug,
		Title:         t.Title,
		Category:      string(t.Category),
		CategoryLabel: t.Category.Label(),
		Description:   t.Description,
		Path:          t.Path,
		Keywords:      t.Keywords,
		UpdatedAt:     t.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func (h *ToolHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := parseOptionalInt(query.Get("limit"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid limit")
		return
	}

	out, err := h.svc.List(r.Context(), service.ListToolsInput{
		Category: domain.ToolCategory(query.Get("category")),
		Cursor:   query.Get("cursor"),
		Limit:    limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*ToolResponse, 0, len(out.Items))
	for _, t := range out.Items {
		items = append(items, toolToResponse(t))
	}

	api.Success(w, http.StatusOK, ListToolsResponse{
		Items:   items,
		Cursor:  out.Cursor,
		HasMore: out.HasMore,
	})
}

func (h *ToolHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		api.Error(w, http.StatusBadRequest, "slug is required")
		return
	}

	tool, err := h.svc.Get(r.Context(), slug)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, toolToResponse(tool))
}

func (h *ToolHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, cats)
}

// Search handles GET /search. The account is recorded on the search log when
// the request carries a valid API key.
func (h *ToolHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := parseOptionalInt(query.Get("limit"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid limit")
		return
	}

	var threshold float64
	if raw := query.Get("threshold"); raw != "" {
		threshold, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid threshold")
			return
		}
	}

	out, err := h.svc.Search(r.Context(), service.SearchInput{
		AccountID: middleware.GetAccountID(r.Context()),
		Query:     query.Get("q"),
		Category:  domain.ToolCategory(query.Get("category")),
		Threshold: threshold,
		Limit:     limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	results := make([]*SearchResultResponse, 0, len(out.Results))
	for _, hit := range out.Results {
		results = append(results, &SearchResultResponse{
			ToolResponse: toolToResponse(hit.Tool),
			Distance:     hit.Distance,
		})
	}

	api.Success(w, http.StatusOK, SearchResponse{
		SearchID: out.SearchID,
		Query:    query.Get("q"),
		Phase:    string(out.Phase),
		Total:    out.Total,
		Results:  results,
	})
}

func (h *ToolHandler) SearchFeedback(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SearchFeedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if !requireFields(w, "search_id", req.SearchID, "slug", req.Slug) {
		return
	}

	if err := h.svc.RecordSelection(r.Context(), accountID, req.SearchID, req.Slug); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseOptionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
