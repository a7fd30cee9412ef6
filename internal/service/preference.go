package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"slices"
	"time"

	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/cloo-solutions/onetool/internal/telemetry"
)

// PreferenceRepository defines the repository interface for preference persistence
type PreferenceRepository interface {
	Get(ctx context.Context, accountID, key string) (*domain.Preference, error)
	// Put inserts or replaces a key, failing with domain.ErrQuotaExceeded if
	// the account's total size after the write would exceed quotaBytes.
	Put(ctx context.Context, pref *domain.Preference, quotaBytes int64) error
	Delete(ctx context.Context, accountID, key string) error
	Clear(ctx context.Context, accountID string) (int64, error)
	List(ctx context.Context, accountID string) ([]*domain.Preference, error)
	Usage(ctx context.Context, accountID string) (usedBytes int64, keys int, err error)
}

// ToolResolver looks up enabled tools by slug.
type ToolResolver interface {
	Get(ctx context.Context, slug string) (*domain.Tool, error)
}

// PreferenceService is a quota-aware key/value store per account
type PreferenceService struct {
	repo       PreferenceRepository
	tools      ToolResolver
	quotaBytes int64
}

// NewPreferenceService creates a PreferenceService. A non-positive quota uses
// domain.DefaultPreferenceQuotaBytes.
func NewPreferenceService(repo PreferenceRepository, tools ToolResolver, quotaBytes int64) *PreferenceService {
	if quotaBytes <= 0 {
		quotaBytes = domain.DefaultPreferenceQuotaBytes
	}
	return &PreferenceService{
		repo:       repo,
		tools:      tools,
		quotaBytes: quotaBytes,
	}
}

// QuotaBytes returns the per-account limit.
func (s *PreferenceService) QuotaBytes() int64 {
	return s.quotaBytes
}

// Get returns the raw JSON stored under key.
func (s *PreferenceService) Get(ctx context.Context, accountID, key string) (json.RawMessage, error) {
	if err := domain.ValidatePreferenceKey(key); err != nil {
		return nil, err
	}

	p, err := s.repo.Get(ctx, accountID, key)
	if err != nil {
		return nil, err
	}
	return p.Value, nil
}

// GetOrDefault never fails: missing, unreadable or corrupt values yield fallback.
func (s *PreferenceService) GetOrDefault(ctx context.Context, accountID, key string, fallback json.RawMessage) json.RawMessage {
	v, err := s.Get(ctx, accountID, key)
	if err != nil {
		if !IsNotFound(err) {
			log.Printf("preferences: read %q for account %s: %v", key, accountID, err)
		}
		return fallback
	}
	if !json.Valid(v) {
		log.Printf("preferences: discarding corrupt value for %q (account %s)", key, accountID)
		return fallback
	}
	return v
}

// Set validates and stores value under key.
func (s *PreferenceService) Set(ctx context.Context, accountID, key string, value json.RawMessage) (*domain.Preference, error) {
	ctx, span := telemetry.StartSpan(ctx, "PreferenceService.Set", telemetry.SpanAttributes{
		AccountID: accountID,
		Operation: "set",
	})
	defer span.End()

	if accountID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "account ID is required")
	}
	if err := domain.ValidatePreferenceKey(key); err != nil {
		return nil, err
	}
	if err := domain.ValidatePreferenceValue(value); err != nil {
		return nil, err
	}
	if domain.PreferenceSize(key, value) > s.quotaBytes {
		return nil, domain.ErrQuotaExceeded
	}

	pref := &domain.Preference{
		AccountID: accountID,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.repo.Put(ctx, pref, s.quotaBytes); err != nil {
		if !errors.Is(err, domain.ErrQuotaExceeded) {
			span.SetError(err)
		}
		return nil, err
	}
	return pref, nil
}

func (s *PreferenceService) Delete(ctx context.Context, accountID, key string) error {
	if err := domain.ValidatePreferenceKey(key); err != nil {
		return err
	}
	return s.repo.Delete(ctx, accountID, key)
}

// Clear removes every key for the account and returns how many were deleted.
func (s *PreferenceService) Clear(ctx context.Context, accountID string) (int64, error) {
	return s.repo.Clear(ctx, accountID)
}

func (s *PreferenceService) List(ctx context.Context, accountID string) ([]*domain.Preference, error) {
	return s.repo.List(ctx, accountID)
}

func (s *PreferenceService) Usage(ctx context.Context, accountID string) (*domain.PreferenceUsage, error) {
	used, keys, err := s.repo.Usage(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &domain.PreferenceUsage{
		UsedBytes:  used,
		QuotaBytes: s.quotaBytes,
		Keys:       keys,
	}, nil
}

// Favorites returns the favorited slugs in the order they were added.
func (s *PreferenceService) Favorites(ctx context.Context, accountID string) []string {
	return s.slugList(ctx, accountID, domain.PreferenceKeyFavorites)
}

// AddFavorite appends slug to favorites. Adding an existing favorite is a no-op.
func (s *PreferenceService) AddFavorite(ctx context.Context, accountID, slug string) ([]string, error) {
	if _, err := s.tools.Get(ctx, slug); err != nil {
		return nil, err
	}

	favs, err := s.loadSlugList(ctx, accountID, domain.PreferenceKeyFavorites)
	if err != nil {
		return nil, err
	}
	if slices.Contains(favs, slug) {
		return favs, nil
	}
	favs = append(favs, slug)

	if err := s.putSlugList(ctx, accountID, domain.PreferenceKeyFavorites, favs); err != nil {
		return nil, err
	}
	return favs, nil
}

// RemoveFavorite drops slug from favorites. Removing an absent slug is a no-op.
func (s *PreferenceService) RemoveFavorite(ctx context.Context, accountID, slug string) ([]string, error) {
	if !domain.IsValidSlug(slug) {
		return nil, domain.ErrInvalidToolSlug
	}

	favs, err := s.loadSlugList(ctx, accountID, domain.PreferenceKeyFavorites)
	if err != nil {
		return nil, err
	}
	idx := slices.Index(favs, slug)
	if idx < 0 {
		return favs, nil
	}
	favs = slices.Delete(favs, idx, idx+1)

	if err := s.putSlugList(ctx, accountID, domain.PreferenceKeyFavorites, favs); err != nil {
		return nil, err
	}
	return favs, nil
}

// RecentTools returns recently opened slugs, most recent first.
func (s *PreferenceService) RecentTools(ctx context.Context, accountID string) []string {
	return s.slugList(ctx, accountID, domain.PreferenceKeyRecentTools)
}

// RecordVisit moves slug to the front of the recent list, keeping at most
// domain.MaxRecentTools entries.
func (s *PreferenceService) RecordVisit(ctx context.Context, accountID, slug string) ([]string, error) {
	if _, err := s.tools.Get(ctx, slug); err != nil {
		return nil, err
	}

	current, err := s.loadSlugList(ctx, accountID, domain.PreferenceKeyRecentTools)
	if err != nil {
		return nil, err
	}
	recent := pushRecent(current, slug, domain.MaxRecentTools)

	if err := s.putSlugList(ctx, accountID, domain.PreferenceKeyRecentTools, recent); err != nil {
		return nil, err
	}
	return recent, nil
}

func pushRecent(list []string, slug string, limit int) []string {
	out := make([]string, 0, limit)
	out = append(out, slug)
	for _, s := range list {
		if len(out) == limit {
			break
		}
		if s != slug {
			out = append(out, s)
		}
	}
	return out
}

func (s *PreferenceService) slugList(ctx context.Context, accountID, key string) []string {
	slugs, err := s.loadSlugList(ctx, accountID, key)
	if err != nil {
		log.Printf("preferences: read %q for account %s: %v", key, accountID, err)
		return []string{}
	}
	return slugs
}

// loadSlugList reads a stored slug list for a read-modify-write. A missing or
// corrupt value is an empty list; repository failures are returned.
func (s *PreferenceService) loadSlugList(ctx context.Context, accountID, key string) ([]string, error) {
	p, err := s.repo.Get(ctx, accountID, key)
	if err != nil {
		if IsNotFound(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var slugs []string
	if err := json.Unmarshal(p.Value, &slugs); err != nil {
		log.Printf("preferences: %q for account %s is not a slug list: %v", key, accountID, err)
		return []string{}, nil
	}
	if slugs == nil {
		slugs = []string{}
	}
	return slugs, nil
}

func (s *PreferenceService) putSlugList(ctx context.Context, accountID, key string, slugs []string) error {
	raw, err := json.Marshal(slugs)
	if err != nil {
		return err
	}
	_, err = s.Set(ctx, accountID, key, raw)
	return err
}
