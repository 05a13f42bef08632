package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/domain"
)

// catalogQuerier carries the pool plus the catalog lookups shared by the
// order and webhook repositories. All reads honor a transaction travelling
// in the context and fall back to the pool outside one.
type catalogQuerier struct {
	pool *pgxpool.Pool
}

func (c *catalogQuerier) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	const query = `SELECT id, name, price, active FROM products WHERE id = $1`

	var p domain.Product
	err := c.queryRow(ctx, query, productID).Scan(&p.ID, &p.Name, &p.Price, &p.Active)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Product{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, classify(fmt.Errorf("get product: %w", err))
	}
	return p, nil
}

func (c *catalogQuerier) GetModifier(ctx context.Context, productID, modifierID string) (domain.Modifier, error) {
	const query = `SELECT id, product_id, name, price, active FROM modifiers WHERE id = $1 AND product_id = $2`

	var m domain.Modifier
	err := c.queryRow(ctx, query, modifierID, productID).Scan(&m.ID, &m.ProductID, &m.Name, &m.Price, &m.Active)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Modifier{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Modifier{}, domain.ErrModifierUnknown
		}
		return domain.Modifier{}, classify(fmt.Errorf("get modifier: %w", err))
	}
	return m, nil
}

func (c *catalogQuerier) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return c.pool.Exec(ctx, sql, args...)
}

func (c *catalogQuerier) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return c.pool.QueryRow(ctx, sql, args...)
}

func (c *catalogQuerier) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return c.pool.Query(ctx, sql, args...)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
