package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/cloo-solutions/onetool/internal/api"
	"github.com/cloo-solutions/onetool/internal/domain"
)

type contextKey string

const AccountIDKey contextKey = "account_id"

type AuthValidator interface {
	ValidateAPIKey(ctx context.Context, token string) (string, error)
}

// APIKeyAuth rejects requests without a valid bearer API key.
func APIKeyAuth(validator AuthValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			token, ok := bearerToken(authHeader)
			if !ok {
				api.Error(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			accountID, err := validator.ValidateAPIKey(r.Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrAPIKeyRevoked) {
					api.Error(w, http.StatusUnauthorized, "api key has been revoked")
					return
				}
				api.Error(w, http.StatusUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccountID(r.Context(), accountID)))
		})
	}
}

// OptionalAPIKeyAuth attaches the account when a valid key is supplied and
// otherwise lets the request through anonymously. A malformed or invalid key
// is still rejected so clients notice misconfiguration.
func OptionalAPIKeyAuth(validator AuthValidator) func(http.Handler) http.Handler {
	required := APIKeyAuth(validator)
	return func(next http.Handler) http.Handler {
		authed := required(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			authed.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// WithAccountID stores the authenticated account on the context.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	if h, ok := ctx.Value(accountHolderKey).(*accountHolder); ok {
		h.set(accountID)
	}
	return context.WithValue(ctx, AccountIDKey, accountID)
}

func GetAccountID(ctx context.Context) string {
	accountID, _ := ctx.Value(AccountIDKey).(string)
	return accountID
}
