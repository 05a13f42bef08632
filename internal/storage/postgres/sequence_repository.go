package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SequenceRepository owns the sequence_counters rows: one row per trading
// day, created lazily, mutated only under a row lock, never deleted.
type SequenceRepository struct {
	pool *pgxpool.Pool
}

func NewSequenceRepository(pool *pgxpool.Pool) *SequenceRepository {
	return &SequenceRepository{pool: pool}
}

func (r *SequenceRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// NextValue increments and returns the counter for dayKey inside the current
// transaction. The row lock serializes same-key callers only; other day keys
// proceed in parallel. When the row does not exist yet, the upsert resolves
// the concurrent-first-insert race under the same lock: the loser of the
// insert increments instead of failing.
func (r *SequenceRepository) NextValue(ctx context.Context, dayKey string) (int, error) {
	const lockQuery = `SELECT current_value FROM sequence_counters WHERE day_key = $1 FOR UPDATE`

	var current int
	err := r.queryRow(ctx, lockQuery, dayKey).Scan(&current)
	switch {
	case err == nil:
		next := current + 1
		const update = `UPDATE sequence_counters SET current_value = $2 WHERE day_key = $1`
		if _, err := r.exec(ctx, update, dayKey, next); err != nil {
			return 0, classify(fmt.Errorf("advance sequence %s: %w", dayKey, err))
		}
		return next, nil

	case err == pgx.ErrNoRows:
		const upsert = `
INSERT INTO sequence_counters (day_key, current_value)
VALUES ($1, 1)
ON CONFLICT (day_key) DO UPDATE SET current_value = sequence_counters.current_value + 1
RETURNING current_value`
		var next int
		if err := r.queryRow(ctx, upsert, dayKey).Scan(&next); err != nil {
			return 0, classify(fmt.Errorf("create sequence %s: %w", dayKey, err))
		}
		return next, nil

	default:
		return 0, classify(fmt.Errorf("lock sequence %s: %w", dayKey, err))
	}
}

func (r *SequenceRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *SequenceRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
