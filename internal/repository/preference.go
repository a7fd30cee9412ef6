package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PreferenceRepository stores per-account JSON values. Values are kept as
// text so that the stored bytes match what the client sent.
type PreferenceRepository struct {
	pool *pgxpool.Pool
}

func NewPreferenceRepository(pool *pgxpool.Pool) *PreferenceRepository {
	return &PreferenceRepository{pool: pool}
}

func (r *PreferenceRepository) Get(ctx context.Context, accountID, key string) (*domain.Preference, error) {
	var p domain.Preference
	var value string
	err := r.pool.QueryRow(ctx,
		`SELECT account_id, key, value, updated_at FROM preferences WHERE account_id = $1 AND key = $2`,
		accountID, key,
	).Scan(&p.AccountID, &p.Key, &value, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPreferenceNotFound
		}
		return nil, err
	}
	p.Value = json.RawMessage(value)
	return &p, nil
}

// Put replaces the value under key. The account row is locked so concurrent
// writers for the same account see each other's usage.
func (r *PreferenceRepository) Put(ctx context.Context, pref *domain.Preference, quotaBytes int64) error {
	size := pref.Size()

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var id string
		err := tx.QueryRow(ctx, `SELECT id FROM accounts WHERE id = $1 FOR UPDATE`, pref.AccountID).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrAccountNotFound
			}
			return err
		}

		var others int64
		err = tx.QueryRow(ctx,
			`SELECT COALESCE(SUM(size_bytes), 0) FROM preferences WHERE account_id = $1 AND key <> $2`,
			pref.AccountID, pref.Key,
		).Scan(&others)
		if err != nil {
			return err
		}

		if others+size > quotaBytes {
			return domain.ErrQuotaExceeded
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO preferences (account_id, key, value, size_bytes, updated_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (account_id, key) DO UPDATE SET
			   value = EXCLUDED.value,
			   size_bytes = EXCLUDED.size_bytes,
			   updated_at = EXCLUDED.updated_at`,
			pref.AccountID, pref.Key, string(pref.Value), size, pref.UpdatedAt,
		)
		return err
	})
}

func (r *PreferenceRepository) Delete(ctx context.Context, accountID, key string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM preferences WHERE account_id = $1 AND key = $2`,
		accountID, key,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrPreferenceNotFound
	}
	return nil
}

func (r *PreferenceRepository) Clear(ctx context.Context, accountID string) (int64, error) {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM preferences WHERE account_id = $1`, accountID)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

func (r *PreferenceRepository) List(ctx context.Context, accountID string) ([]*domain.Preference, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT account_id, key, value, updated_at FROM preferences WHERE account_id = $1 ORDER BY key`,
		accountID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prefs []*domain.Preference
	for rows.Next() {
		var p domain.Preference
		var value string
		if err := rows.Scan(&p.AccountID, &p.Key, &value, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Value = json.RawMessage(value)
		prefs = append(prefs, &p)
	}
	return prefs, rows.Err()
}

func (r *PreferenceRepository) Usage(ctx context.Context, accountID string) (int64, int, error) {
	var used int64
	var keys int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(size_bytes), 0), COUNT(*) FROM preferences WHERE account_id = $1`,
		accountID,
	).Scan(&used, &keys)
	if err != nil {
		return 0, 0, err
	}
	return used, keys, nil
}
