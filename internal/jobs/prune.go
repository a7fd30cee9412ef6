package jobs

import (
	"context"
	"fmt"
	"log"
	"time"
)

// DefaultSearchLogRetention is how long search logs are kept.
const DefaultSearchLogRetention = 30 * 24 * time.Hour

// SearchLogDeleter removes old search logs.
type SearchLogDeleter interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SearchLogPruner deletes search logs past the retention window
type SearchLogPruner struct {
	repo      SearchLogDeleter
	retention time.Duration
	now       func() time.Time
}

// NewSearchLogPruner creates a pruner. A non-positive retention uses
// DefaultSearchLogRetention.
func NewSearchLogPruner(repo SearchLogDeleter, retention time.Duration) *SearchLogPruner {
	if retention <= 0 {
		retention = DefaultSearchLogRetention
	}
	return &SearchLogPruner{
		repo:      repo,
		retention: retention,
		now:       time.Now,
	}
}

// ProcessJobs implements the JobProcessor interface
func (p *SearchLogPruner) ProcessJobs(ctx context.Context) error {
	cutoff := p.now().UTC().Add(-p.retention)

	n, err := p.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune search logs: %w", err)
	}
	if n > 0 {
		log.Printf("pruned %d search logs older than %s", n, cutoff.Format(time.RFC3339))
	}
	return nil
}
