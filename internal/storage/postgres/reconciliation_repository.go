package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/domain"
)

type ReconciliationRepository struct {
	catalogQuerier
}

func NewReconciliationRepository(pool *pgxpool.Pool) *ReconciliationRepository {
	return &ReconciliationRepository{catalogQuerier{pool: pool}}
}

// CreateFlag runs outside any order transaction: the order it refers to is
// already committed and the flag must survive regardless.
func (r *ReconciliationRepository) CreateFlag(ctx context.Context, flag domain.ReconciliationFlag) error {
	const stmt = `
INSERT INTO reconciliation_flags (id, order_technical_id, subsystem, entity_id, detail, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.exec(ctx, stmt, flag.ID, flag.OrderID, flag.Subsystem, flag.EntityID, flag.Detail, flag.CreatedAt)
	if err != nil {
		return classify(fmt.Errorf("create reconciliation flag: %w", err))
	}
	return nil
}

func (r *ReconciliationRepository) ListFlags(ctx context.Context) ([]domain.ReconciliationFlag, error) {
	const query = `
SELECT id, order_technical_id, subsystem, entity_id, detail, created_at
FROM reconciliation_flags
ORDER BY created_at DESC`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, classify(fmt.Errorf("list reconciliation flags: %w", err))
	}
	defer rows.Close()

	var flags []domain.ReconciliationFlag
	for rows.Next() {
		var f domain.ReconciliationFlag
		if err := rows.Scan(&f.ID, &f.OrderID, &f.Subsystem, &f.EntityID, &f.Detail, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reconciliation flag: %w", err)
		}
		flags = append(flags, f)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("list reconciliation flags: %w", err))
	}
	return flags, nil
}
