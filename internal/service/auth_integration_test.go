//go:build integration

package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/cloo-solutions/onetool/internal/repository"
	"github.com/cloo-solutions/onetool/internal/service"
	"github.com/cloo-solutions/onetool/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntegrationAuthService(ctx context.Context, t *testing.T) (*service.AuthService, *repository.APIKeyRepository) {
	t.Helper()

	pool := testutil.NewMigratedDB(ctx, t, "../../migrations")

	keyRepo := repository.NewAPIKeyRepository(pool)
	return service.NewAuthService(repository.NewAccountRepository(pool), keyRepo, &service.DefaultUUIDGenerator{}), keyRepo
}

func TestAuthService_Integration_CreateAccount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newIntegrationAuthService(ctx, t)

	account, err := svc.CreateAccount(ctx, "Integration Account")
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)

	_, err = svc.CreateAccount(ctx, "Integration Account")
	assert.ErrorIs(t, err, domain.ErrAccountAlreadyExists)

	accounts, err := svc.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestAuthService_Integration_KeyLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, keyRepo := newIntegrationAuthService(ctx, t)

	account, err := svc.CreateAccount(ctx, "Test Account")
	require.NoError(t, err)

	token, key, err := svc.CreateAPIKey(ctx, account.ID, "test-key")
	require.NoError(t, err)
	assert.Equal(t, 68, len(token))

	stored, err := keyRepo.GetByID(ctx, key.ID)
	require.NoError(t, err)
	assert.NotEqual(t, token, stored.KeyHash)

	accountID, err := svc.ValidateAPIKey(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, accountID)

	require.NoError(t, svc.RevokeAPIKey(ctx, key.ID))

	_, err = svc.ValidateAPIKey(ctx, token)
	assert.ErrorIs(t, err, domain.ErrAPIKeyRevoked)
}

func TestAuthService_Integration_ListAPIKeys(t *testing.T) {
	ctx := context.Background()
	svc, _ := newIntegrationAuthService(ctx, t)

	account, err := svc.CreateAccount(ctx, "Test Account")
	require.NoError(t, err)

	token1, _, err := svc.CreateAPIKey(ctx, account.ID, "key-1")
	require.NoError(t, err)
	token2, _, err := svc.CreateAPIKey(ctx, account.ID, "key-2")
	require.NoError(t, err)
	assert.NotEqual(t, token1, token2)

	keys, err := svc.ListAPIKeys(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "key-2", keys[0].Name)
	assert.Equal(t, "key-1", keys[1].Name)
}

func TestAuthService_Integration_CreateAPIKey_AccountNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newIntegrationAuthService(ctx, t)

	_, _, err := svc.CreateAPIKey(ctx, uuid.NewString(), "test-key")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAuthService_Integration_ValidateAPIKey_Unknown(t *testing.T) {
	ctx := context.Background()
	svc, _ := newIntegrationAuthService(ctx, t)

	_, err := svc.ValidateAPIKey(ctx, "otk_"+strings.Repeat("ab", 32))
	assert.ErrorIs(t, err, domain.ErrInvalidAPIKey)
}
