package repository

import (
	"context"
	"time"

	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/cloo-solutions/onetool/internal/pagination"
	"github.com/cloo-solutions/onetool/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const toolColumns = `id, slug, title, category, description, path, keywords, enabled, created_at, updated_at`

type ToolRepository struct {
	db dbtx
}

func NewToolRepository(pool *pgxpool.Pool) *ToolRepository {
	return &ToolRepository{db: pool}
}

func NewToolRepositoryWithTx(tx pgx.Tx) *ToolRepository {
	return &ToolRepository{db: tx}
}

// Upsert inserts a tool or refreshes its catalog fields by slug. The enabled
// flag and creation time of an existing row are preserved.
func (r *ToolRepository) Upsert(ctx context.Context, t *domain.Tool) error {
	keywords := t.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO tools (`+toolColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (slug) DO UPDATE SET
		   title = EXCLUDED.title,
		   category = EXCLUDED.category,
		   description = EXCLUDED.description,
		   path = EXCLUDED.path,
		   keywords = EXCLUDED.keywords,
		   updated_at = EXCLUDED.updated_at
		 WHERE (tools.title, tools.category, tools.description, tools.path, tools.keywords)
		   IS DISTINCT FROM (EXCLUDED.title, EXCLUDED.category, EXCLUDED.description, EXCLUDED.path, EXCLUDED.keywords)`,
		t.ID, t.Slug, t.Title, t.Category, t.Description, t.Path, keywords, t.Enabled, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

func (r *ToolRepository) GetBySlug(ctx context.Context, slug string) (*domain.Tool, error) {
	rows, err := r.db.Query(ctx, `SELECT `+toolColumns+` FROM tools WHERE slug = $1`, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tools, err := scanTools(rows)
	if err != nil {
		return nil, err
	}
	if len(tools) == 0 {
		return nil, domain.ErrToolNotFound
	}
	return tools[0], nil
}

func (r *ToolRepository) List(ctx context.Context) ([]*domain.Tool, error) {
	rows, err := r.db.Query(ctx, `SELECT `+toolColumns+` FROM tools ORDER BY category, slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTools(rows)
}

// ListEnabled returns enabled tools ordered by slug.
func (r *ToolRepository) ListEnabled(ctx context.Context) ([]*domain.Tool, error) {
	rows, err := r.db.Query(ctx, `SELECT `+toolColumns+` FROM tools WHERE enabled ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTools(rows)
}

func (r *ToolRepository) ListPage(ctx context.Context, category domain.ToolCategory, cursor *pagination.Cursor, limit int) (*service.ToolPageResult, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT `+toolColumns+`
			 FROM tools
			 WHERE enabled AND ($1::text = '' OR category = $1::text) AND (updated_at, id) < ($2, $3)
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $4`,
			string(category), cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+toolColumns+`
			 FROM tools
			 WHERE enabled AND ($1::text = '' OR category = $1::text)
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $2`,
			string(category), limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tools, err := scanTools(rows)
	if err != nil {
		return nil, err
	}

	page, next, hasMore := pagination.Trim(tools, limit,
		func(t *domain.Tool) string { return t.ID },
		func(t *domain.Tool) time.Time { return t.UpdatedAt },
	)

	return &service.ToolPageResult{
		Items:      page,
		NextCursor: next,
		HasMore:    hasMore,
	}, nil
}

func (r *ToolRepository) SetEnabled(ctx context.Context, slug string, enabled bool) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE tools SET enabled = $1, updated_at = now() WHERE slug = $2`,
		enabled, slug,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrToolNotFound
	}
	return nil
}

func scanTools(rows pgx.Rows) ([]*domain.Tool, error) {
	var tools []*domain.Tool
	for rows.Next() {
		var t domain.Tool
		var description *string
		if err := rows.Scan(&t.ID, &t.Slug, &t.Title, &t.Category, &description, &t.Path, &t.Keywords, &t.Enabled, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if description != nil {
			t.Description = *description
		}
		tools = append(tools, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tools, nil
}
