package domain

import "time"

// SearchLog records one catalog search for relevance evaluation
type SearchLog struct {
	ID          string
	AccountID   string
	Query       string
	Category    ToolCategory
	Phase       string
	Threshold   float64
	ResultSlugs []string
	DurationMs  int
	ChosenSlug  string
	ChosenAt    *time.Time
	CreatedAt   time.Time
}

// ResultCount is the number of tools returned
func (l *SearchLog) ResultCount() int {
	return len(l.ResultSlugs)
}
