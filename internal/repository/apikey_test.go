//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(ctx, t)
	keyRepo := NewAPIKeyRepository(pool)

	account := createTestAccount(ctx, t, pool, "keys")
	key := domain.NewAPIKey(uuid.NewString(), account.ID, "Test Key", "hashed_key_value", time.Now().UTC().Truncate(time.Microsecond))

	require.NoError(t, keyRepo.Create(ctx, key))

	retrieved, err := keyRepo.GetByID(ctx, key.ID)
	require.NoError(t, err)
	assert.Equal(t, key.AccountID, retrieved.AccountID)
	assert.Equal(t, key.Name, retrieved.Name)
	assert.Nil(t, retrieved.RevokedAt)

	byHash, err := keyRepo.GetByHash(ctx, "hashed_key_value")
	require.NoError(t, err)
	assert.Equal(t, key.ID, byHash.ID)

	_, err = keyRepo.GetByHash(ctx, "other")
	assert.ErrorIs(t, err, domain.ErrAPIKeyNotFound)

	dup := domain.NewAPIKey(uuid.NewString(), account.ID, "Dup", "hashed_key_value", time.Now().UTC())
	assert.ErrorIs(t, keyRepo.Create(ctx, dup), domain.ErrAPIKeyAlreadyExists)
}

func TestAPIKeyRepository_Create_ForeignKeyViolation(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(ctx, t)
	keyRepo := NewAPIKeyRepository(pool)

	key := domain.NewAPIKey(uuid.NewString(), uuid.NewString(), "Orphan Key", "hashed", time.Now().UTC())
	assert.Error(t, keyRepo.Create(ctx, key))
}

func TestAPIKeyRepository_Revoke(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(ctx, t)
	keyRepo := NewAPIKeyRepository(pool)

	account := createTestAccount(ctx, t, pool, "revoke")
	key := domain.NewAPIKey(uuid.NewString(), account.ID, "k", "h1", time.Now().UTC())
	require.NoError(t, keyRepo.Create(ctx, key))

	require.NoError(t, keyRepo.Revoke(ctx, key.ID))

	got, err := keyRepo.GetByID(ctx, key.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRevoked())

	assert.ErrorIs(t, keyRepo.Revoke(ctx, key.ID), domain.ErrAPIKeyNotFound)
	assert.ErrorIs(t, keyRepo.Revoke(ctx, uuid.NewString()), domain.ErrAPIKeyNotFound)
}

func TestAPIKeyRepository_GetByAccountID(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(ctx, t)
	keyRepo := NewAPIKeyRepository(pool)

	a := createTestAccount(ctx, t, pool, "a")
	b := createTestAccount(ctx, t, pool, "b")

	base := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, keyRepo.Create(ctx, domain.NewAPIKey(uuid.NewString(), a.ID, "old", "h-a1", base)))
	require.NoError(t, keyRepo.Create(ctx, domain.NewAPIKey(uuid.NewString(), a.ID, "new", "h-a2", base.Add(time.Second))))
	require.NoError(t, keyRepo.Create(ctx, domain.NewAPIKey(uuid.NewString(), b.ID, "other", "h-b1", base)))

	keys, err := keyRepo.GetByAccountID(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "new", keys[0].Name)
	assert.Equal(t, "old", keys[1].Name)
}
