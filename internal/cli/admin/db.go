package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloo-solutions/onetool/internal/config"
	"github.com/cloo-solutions/onetool/internal/database"
	"github.com/cloo-solutions/onetool/internal/repository"
	"github.com/cloo-solutions/onetool/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
)

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.Database())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

func printJSON(v interface{}) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(jsonBytes))
	return nil
}

func newAuthService(pool *pgxpool.Pool) *service.AuthService {
	return service.NewAuthService(
		repository.NewAccountRepository(pool),
		repository.NewAPIKeyRepository(pool),
		&service.DefaultUUIDGenerator{},
	)
}

func newCatalogService(pool *pgxpool.Pool) *service.CatalogService {
	return service.NewCatalogService(
		repository.NewToolRepository(pool),
		repository.NewSearchLogRepository(pool),
		repository.NewTxRunner(pool),
		0,
	)
}
