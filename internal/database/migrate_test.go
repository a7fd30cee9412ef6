//go:build integration

package database_test

import (
	"context"
	"testing"

	"github.com/cloo-solutions/onetool/internal/database"
	"github.com/cloo-solutions/onetool/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_AppliesAndIsIdempotent(t *testing.T) {
	ctx := context.Background()

	pc := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { pc.Terminate(ctx) })

	version, err := database.Migrate(pc.ConnectionString(), "file://../../migrations")
	require.NoError(t, err)
	assert.Equal(t, uint(4), version)

	version, err = database.Migrate(pc.ConnectionString(), "file://../../migrations")
	require.NoError(t, err)
	assert.Equal(t, uint(4), version)

	pool, err := database.NewPool(ctx, database.Config{URL: pc.ConnectionString(), MaxConns: 4})
	require.NoError(t, err)
	defer pool.Close()

	var n int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM tools`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestNewPool_InvalidURL(t *testing.T) {
	_, err := database.NewPool(context.Background(), database.Config{URL: "://bad"})
	assert.Error(t, err)
}
