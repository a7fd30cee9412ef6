package repository

import (
	"context"
	"time"

	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SearchLogRepository stores search logs for evaluation/feedback loops.
type SearchLogRepository struct {
	pool *pgxpool.Pool
}

func NewSearchLogRepository(pool *pgxpool.Pool) *SearchLogRepository {
	return &SearchLogRepository{pool: pool}
}

func (r *SearchLogRepository) CreateSearchLog(ctx context.Context, entry *domain.SearchLog) (string, error) {
	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}
	slugs := entry.ResultSlugs
	if slugs == nil {
		slugs = []string{}
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO search_logs (id, account_id, query, category, phase, threshold, result_slugs, result_count, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id,
		nullableString(entry.AccountID),
		entry.Query,
		nullableString(string(entry.Category)),
		entry.Phase,
		entry.Threshold,
		slugs,
		entry.ResultCount(),
		entry.DurationMs,
		entry.CreatedAt,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// RecordSelection marks the chosen tool on a search made by the account or
// anonymously.
func (r *SearchLogRepository) RecordSelection(ctx context.Context, accountID, searchID, slug string) error {
	if _, err := uuid.Parse(searchID); err != nil {
		return domain.ErrSearchLogNotFound
	}

	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE search_logs
		 SET chosen_slug = $1, chosen_at = $2
		 WHERE id = $3 AND (account_id IS NULL OR account_id = $4)`,
		slug,
		time.Now().UTC(),
		searchID,
		nullableString(accountID),
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSearchLogNotFound
	}
	return nil
}

// GetByID loads a single log entry.
func (r *SearchLogRepository) GetByID(ctx context.Context, id string) (*domain.SearchLog, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrSearchLogNotFound
	}

	var l domain.SearchLog
	var accountID, category, chosen *string
	err := r.pool.QueryRow(ctx,
		`SELECT id, account_id, query, category, phase, threshold, result_slugs, duration_ms, chosen_slug, chosen_at, created_at
		 FROM search_logs WHERE id = $1`,
		id,
	).Scan(&l.ID, &accountID, &l.Query, &category, &l.Phase, &l.Threshold, &l.ResultSlugs, &l.DurationMs, &chosen, &l.ChosenAt, &l.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrSearchLogNotFound
		}
		return nil, err
	}
	if accountID != nil {
		l.AccountID = *accountID
	}
	if category != nil {
		l.Category = domain.ToolCategory(*category)
	}
	if chosen != nil {
		l.ChosenSlug = *chosen
	}
	return &l, nil
}

// DeleteOlderThan prunes logs created before cutoff.
func (r *SearchLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM search_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}
