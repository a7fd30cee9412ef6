//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/cloo-solutions/onetool/internal/testutil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func newTestPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()

	return testutil.NewMigratedDB(ctx, t, "../../migrations")
}

func createTestAccount(ctx context.Context, t *testing.T, pool *pgxpool.Pool, name string) *domain.Account {
	t.Helper()

	account := domain.NewAccount(uuid.NewString(), name, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, NewAccountRepository(pool).Create(ctx, account))
	return account
}
