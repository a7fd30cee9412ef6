package repository

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/onetool/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner hands catalog writes a transaction-scoped ToolRepository.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) WithTx(ctx context.Context, fn func(repos service.TxRepositories) error) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(txRepos{tx: tx})
	})
	if err != nil {
		return fmt.Errorf("catalog transaction: %w", err)
	}
	return nil
}

type txRepos struct {
	tx pgx.Tx
}

func (r txRepos) Tools() service.ToolRepository {
	return NewToolRepositoryWithTx(r.tx)
}
