package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cloo-solutions/onetool/internal/api"
	"github.com/cloo-solutions/onetool/internal/domain"
)

// AuthService covers self-service signup: an account, then a key for it.
type AuthService interface {
	CreateAccount(ctx context.Context, name string) (*domain.Account, error)
	CreateAPIKey(ctx context.Context, accountID, name string) (string, *domain.APIKey, error)
}

type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type CreateAccountRequest struct {
	Name string `json:"name"`
}

type AccountResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type CreateAPIKeyRequest struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
}

// APIKeyResponse is the only place the plaintext token ever appears.
type APIKeyResponse struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Token     string `json:"token"`
	CreatedAt string `json:"created_at"`
}

func (h *AuthHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if !decodeJSON(w, r, &req) || !requireFields(w, "name", req.Name) {
		return
	}

	account, err := h.svc.CreateAccount(r.Context(), req.Name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, AccountResponse{
		ID:        account.ID,
		Name:      account.Name,
		CreatedAt: account.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (h *AuthHandler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req CreateAPIKeyRequest
	if !decodeJSON(w, r, &req) || !requireFields(w, "account_id", req.AccountID, "name", req.Name) {
		return
	}

	token, key, err := h.svc.CreateAPIKey(r.Context(), req.AccountID, req.Name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	api.Success(w, http.StatusCreated, APIKeyResponse{
		ID:        key.ID,
		AccountID: key.AccountID,
		Name:      key.Name,
		Token:     token,
		CreatedAt: key.CreatedAt.UTC().Format(time.RFC3339),
	})
}
