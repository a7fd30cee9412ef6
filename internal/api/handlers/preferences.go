package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/cloo-solutions/onetool/internal/api"
	"github.com/cloo-solutions/onetool/internal/api/middleware"
	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/go-chi/chi/v5"
)

type PreferenceService interface {
	Get(ctx context.Context, accountID, key string) (json.RawMessage, error)
	Set(ctx context.Context, accountID, key string, value json.RawMessage) (*domain.Preference, error)
	Delete(ctx context.Context, accountID, key string) error
	Clear(ctx context.Context, accountID string) (int64, error)
	List(ctx context.Context, accountID string) ([]*domain.Preference, error)
	Usage(ctx context.Context, accountID string) (*domain.PreferenceUsage, error)
	Favorites(ctx context.Context, accountID string) []string
	AddFavorite(ctx context.Context, accountID, slug string) ([]string, error)
	RemoveFavorite(ctx context.Context, accountID, slug string) ([]string, error)
	RecentTools(ctx context.Context, accountID string) []string
	RecordVisit(ctx context.Context, accountID, slug string) ([]string, error)
}

type PreferenceHandler struct {
	svc PreferenceService
}

func NewPreferenceHandler(svc PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{svc: svc}
}

type PreferenceResponse struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value,omitempty"`
	SizeBytes int64           `json:"size_bytes"`
	UpdatedAt string          `json:"updated_at,omitempty"`
}

type UsageResponse struct {
	UsedBytes      int64 `json:"used_bytes"`
	QuotaBytes     int64 `json:"quota_bytes"`
	RemainingBytes int64 `json:"remaining_bytes"`
	Keys           int   `json:"keys"`
}

type ListPreferencesResponse struct {
	Items []*PreferenceResponse `json:"items"`
	Usage *UsageResponse        `json:"usage"`
}

type SlugListResponse struct {
	Slugs []string `json:"slugs"`
}

func preferenceToResponse(p *domain.Preference, withValue bool) *PreferenceResponse {
	resp := &PreferenceResponse{
		Key:       p.Key,
		SizeBytes: p.Size(),
		UpdatedAt: p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if withValue {
		resp.Value = p.Value
	}
	return resp
}

func usageToResponse(u *domain.PreferenceUsage) *UsageResponse {
	return &UsageResponse{
		UsedBytes:      u.UsedBytes,
		QuotaBytes:     u.QuotaBytes,
		RemainingBytes: u.Remaining(),
		Keys:           u.Keys,
	}
}

func requireAccount(w http.ResponseWriter, r *http.Request) (string, bool) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return accountID, true
}

// List returns the account's keys with their sizes, without values.
func (h *PreferenceHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}

	prefs, err := h.svc.List(r.Context(), accountID)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	usage, err := h.svc.Usage(r.Context(), accountID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*PreferenceResponse, 0, len(prefs))
	for _, p := range prefs {
		items = append(items, preferenceToResponse(p, false))
	}

	api.Success(w, http.StatusOK, ListPreferencesResponse{
		Items: items,
		Usage: usageToResponse(usage),
	})
}

func (h *PreferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}

	key := chi.URLParam(r, "key")
	value, err := h.svc.Get(r.Context(), accountID, key)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, PreferenceResponse{
		Key:       key,
		Value:     value,
		SizeBytes: domain.PreferenceSize(key, value),
	})
}

// Put stores the raw request body as the key's JSON value.
func (h *PreferenceHandler) Put(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	pref, err := h.svc.Set(r.Context(), accountID, chi.URLParam(r, "key"), body)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, preferenceToResponse(pref, false))
}

func (h *PreferenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), accountID, chi.URLParam(r, "key")); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PreferenceHandler) Clear(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}

	n, err := h.svc.Clear(r.Context(), accountID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (h *PreferenceHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	api.Success(w, http.StatusOK, SlugListResponse{Slugs: h.svc.Favorites(r.Context(), accountID)})
}

func (h *PreferenceHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}

	favs, err := h.svc.AddFavorite(r.Context(), accountID, chi.URLParam(r, "slug"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, SlugListResponse{Slugs: favs})
}

func (h *PreferenceHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}

	favs, err := h.svc.RemoveFavorite(r.Context(), accountID, chi.URLParam(r, "slug"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, SlugListResponse{Slugs: favs})
}

func (h *PreferenceHandler) Recent(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	api.Success(w, http.StatusOK, SlugListResponse{Slugs: h.svc.RecentTools(r.Context(), accountID)})
}

func (h *PreferenceHandler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}

	recent, err := h.svc.RecordVisit(r.Context(), accountID, chi.URLParam(r, "slug"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, SlugListResponse{Slugs: recent})
}
