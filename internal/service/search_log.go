package service

import (
	"context"
	"time"

	"github.com/cloo-solutions/onetool/internal/domain"
)

// SearchLogRepository persists search logs and selection feedback.
type SearchLogRepository interface {
	CreateSearchLog(ctx context.Context, entry *domain.SearchLog) (string, error)
	RecordSelection(ctx context.Context, accountID, searchID, slug string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
