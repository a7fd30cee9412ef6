package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloo-solutions/onetool/internal/catalog"
	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/cloo-solutions/onetool/internal/fuzzy"
	"github.com/cloo-solutions/onetool/internal/pagination"
	"github.com/cloo-solutions/onetool/internal/telemetry"
	gocache "github.com/patrickmn/go-cache"
)

const enabledToolsCacheKey = "tools:enabled"

// DefaultCatalogCacheTTL is used when NewCatalogService is given a zero TTL.
const DefaultCatalogCacheTTL = 5 * time.Minute

// ToolRepository defines the repository interface for tool persistence
type ToolRepository interface {
	Upsert(ctx context.Context, t *domain.Tool) error
	GetBySlug(ctx context.Context, slug string) (*domain.Tool, error)
	List(ctx context.Context) ([]*domain.Tool, error)
	ListEnabled(ctx context.Context) ([]*domain.Tool, error)
	ListPage(ctx context.Context, category domain.ToolCategory, cursor *pagination.Cursor, limit int) (*ToolPageResult, error)
	SetEnabled(ctx context.Context, slug string, enabled bool) error
}

type ToolPageResult struct {
	Items      []*domain.Tool
	NextCursor string
	HasMore    bool
}

// CatalogService serves the tool catalog and runs searches over it
type CatalogService struct {
	toolRepo ToolRepository
	logRepo  SearchLogRepository
	tx       TxRunner
	cache    *gocache.Cache
	uuidGen  UUIDGenerator
}

// NewCatalogService creates a CatalogService. logRepo may be nil to disable
// search logging.
func NewCatalogService(toolRepo ToolRepository, logRepo SearchLogRepository, tx TxRunner, cacheTTL time.Duration) *CatalogService {
	return NewCatalogServiceWithUUIDGen(toolRepo, logRepo, tx, cacheTTL, &DefaultUUIDGenerator{})
}

// NewCatalogServiceWithUUIDGen creates a CatalogService with a custom UUID generator (for testing)
func NewCatalogServiceWithUUIDGen(toolRepo ToolRepository, logRepo SearchLogRepository, tx TxRunner, cacheTTL time.Duration, uuidGen UUIDGenerator) *CatalogService {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCatalogCacheTTL
	}
	return &CatalogService{
		toolRepo: toolRepo,
		logRepo:  logRepo,
		tx:       tx,
		cache:    gocache.New(cacheTTL, 2*cacheTTL),
		uuidGen:  uuidGen,
	}
}

type ListToolsInput struct {
	Category domain.ToolCategory
	Cursor   string
	Limit    int
}

type ListToolsOutput struct {
	Items   []*domain.Tool
	Cursor  string
	HasMore bool
}

// List returns a page of enabled tools, newest first.
func (s *CatalogService) List(ctx context.Context, input ListToolsInput) (*ListToolsOutput, error) {
	if input.Category != "" && !input.Category.IsValid() {
		return nil, domain.ErrInvalidToolCategory
	}

	var cursor *pagination.Cursor
	if input.Cursor != "" {
		c, err := pagination.DecodeCursor(input.Cursor)
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
		}
		cursor = c
	}

	page, err := s.toolRepo.ListPage(ctx, input.Category, cursor, pagination.ClampLimit(input.Limit))
	if err != nil {
		return nil, err
	}

	return &ListToolsOutput{
		Items:   page.Items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	}, nil
}

// ListAll returns every tool including disabled ones, for administration.
func (s *CatalogService) ListAll(ctx context.Context) ([]*domain.Tool, error) {
	return s.toolRepo.List(ctx)
}

// Get returns an enabled tool by slug.
func (s *CatalogService) Get(ctx context.Context, slug string) (*domain.Tool, error) {
	if !domain.IsValidSlug(slug) {
		return nil, domain.ErrInvalidToolSlug
	}

	t, err := s.toolRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !t.Enabled {
		return nil, domain.ErrToolNotFound
	}
	return t, nil
}

// Categories lists every category with the number of enabled tools in it.
func (s *CatalogService) Categories(ctx context.Context) ([]catalog.Category, error) {
	tools, err := s.enabledTools(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Categories(tools), nil
}

type SearchInput struct {
	AccountID string
	Query     string
	Category  domain.ToolCategory
	Threshold float64
	Limit     int
}

// SearchHit is one ranked tool. Distance is set only for fuzzy matches.
type SearchHit struct {
	Tool     *domain.Tool
	Distance *int
}

type SearchOutput struct {
	SearchID string
	Phase    fuzzy.Phase
	Total    int
	Results  []SearchHit
}

// Search runs the fuzzy matcher over the enabled catalog.
func (s *CatalogService) Search(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "CatalogService.Search", telemetry.SpanAttributes{
		AccountID: input.AccountID,
		Operation: "search",
	})
	defer span.End()

	start := time.Now()

	threshold, err := catalog.ResolveSearch(catalog.SearchParams{
		Category:  input.Category,
		Threshold: input.Threshold,
		Limit:     input.Limit,
	})
	if err != nil {
		return nil, err
	}

	tools, err := s.enabledTools(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	tools = catalog.FilterByCategory(tools, input.Category)

	query := strings.TrimSpace(input.Query)
	ranked := fuzzy.Rank(query, tools, threshold)

	hits := make([]SearchHit, len(ranked.Items))
	for i, t := range ranked.Items {
		hits[i] = SearchHit{Tool: t}
		if ranked.Phase == fuzzy.PhaseFuzzy {
			d := ranked.Matches[i].Distance
			hits[i].Distance = &d
		}
	}

	total := len(hits)
	if input.Limit > 0 && len(hits) > input.Limit {
		hits = hits[:input.Limit]
	}

	out := &SearchOutput{
		Phase:   ranked.Phase,
		Total:   total,
		Results: hits,
	}
	span.SetData("phase", string(out.Phase))
	span.SetData("results", total)
	telemetry.AddBreadcrumb(ctx, "search", fmt.Sprintf("phase=%s results=%d", out.Phase, total))

	if s.logRepo != nil && query != "" {
		out.SearchID = s.logSearch(ctx, input, query, threshold, out, time.Since(start))
	}

	return out, nil
}

func (s *CatalogService) logSearch(ctx context.Context, input SearchInput, query string, threshold float64, out *SearchOutput, elapsed time.Duration) string {
	slugs := make([]string, len(out.Results))
	for i, h := range out.Results {
		slugs[i] = h.Tool.Slug
	}

	entry := &domain.SearchLog{
		ID:          s.uuidGen.NewString(),
		AccountID:   input.AccountID,
		Query:       query,
		Category:    input.Category,
		Phase:       string(out.Phase),
		Threshold:   threshold,
		ResultSlugs: slugs,
		DurationMs:  int(elapsed.Milliseconds()),
		CreatedAt:   time.Now().UTC(),
	}

	id, err := s.logRepo.CreateSearchLog(ctx, entry)
	if err != nil {
		log.Printf("search log: failed to record query %q: %v", query, err)
		return ""
	}
	return id
}

// RecordSelection stores which tool the user opened from a search.
func (s *CatalogService) RecordSelection(ctx context.Context, accountID, searchID, slug string) error {
	if searchID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "search ID is required")
	}
	if !domain.IsValidSlug(slug) {
		return domain.ErrInvalidToolSlug
	}
	if s.logRepo == nil {
		return domain.ErrSearchLogNotFound
	}

	if _, err := s.toolRepo.GetBySlug(ctx, slug); err != nil {
		return err
	}

	return s.logRepo.RecordSelection(ctx, accountID, searchID, slug)
}

// SetEnabled shows or hides a tool.
func (s *CatalogService) SetEnabled(ctx context.Context, slug string, enabled bool) error {
	if !domain.IsValidSlug(slug) {
		return domain.ErrInvalidToolSlug
	}

	if err := s.toolRepo.SetEnabled(ctx, slug, enabled); err != nil {
		return err
	}

	s.cache.Delete(enabledToolsCacheKey)
	return nil
}

// Seed upserts tools in a single transaction. Existing rows keep their
// enabled flag.
func (s *CatalogService) Seed(ctx context.Context, tools []*domain.Tool) (int, error) {
	for _, t := range tools {
		if err := domain.ValidateTool(t); err != nil {
			return 0, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid tool", err)
		}
	}

	err := s.tx.WithTx(ctx, func(repos TxRepositories) error {
		for _, t := range tools {
			if err := repos.Tools().Upsert(ctx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.cache.Delete(enabledToolsCacheKey)
	return len(tools), nil
}

// EnabledTools returns the cached enabled catalog.
func (s *CatalogService) EnabledTools(ctx context.Context) ([]*domain.Tool, error) {
	return s.enabledTools(ctx)
}

func (s *CatalogService) enabledTools(ctx context.Context) ([]*domain.Tool, error) {
	if v, ok := s.cache.Get(enabledToolsCacheKey); ok {
		return v.([]*domain.Tool), nil
	}

	tools, err := s.toolRepo.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}
	tools = catalog.SortBySlug(tools)

	s.cache.SetDefault(enabledToolsCacheKey, tools)
	return tools, nil
}

// IsNotFound reports whether err is a domain not-found error.
func IsNotFound(err error) bool {
	return domain.HasCode(err, domain.ErrCodeNotFound)
}
