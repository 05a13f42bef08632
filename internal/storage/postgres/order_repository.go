package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/domain"
)

type OrderRepository struct {
	catalogQuerier
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{catalogQuerier{pool: pool}}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *OrderRepository) WithSavepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	return withSavepoint(ctx, fn)
}

func (r *OrderRepository) GetOpenShift(ctx context.Context) (domain.RegisterShift, error) {
	const query = `
SELECT id, operator, opened_at
FROM register_shifts
WHERE closed_at IS NULL
ORDER BY opened_at DESC
LIMIT 1`

	var s domain.RegisterShift
	err := r.queryRow(ctx, query).Scan(&s.ID, &s.Operator, &s.OpenedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.RegisterShift{}, domain.ErrNoOpenShift
		}
		return domain.RegisterShift{}, classify(fmt.Errorf("get open shift: %w", err))
	}
	return s, nil
}

func (r *OrderRepository) GetTableForUpdate(ctx context.Context, tableID string) (domain.Table, error) {
	const query = `SELECT id, label, status FROM restaurant_tables WHERE id = $1 FOR UPDATE`

	var t domain.Table
	var status string
	err := r.queryRow(ctx, query, tableID).Scan(&t.ID, &t.Label, &status)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Table{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Table{}, domain.ErrTableNotFound
		}
		return domain.Table{}, classify(fmt.Errorf("get table: %w", err))
	}
	t.Status = domain.TableStatus(status)
	return t, nil
}

func (r *OrderRepository) UpdateTableStatus(ctx context.Context, tableID string, status domain.TableStatus) error {
	const stmt = `UPDATE restaurant_tables SET status = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, tableID, status)
	if err != nil {
		return classify(fmt.Errorf("update table status: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTableNotFound
	}
	return nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	return createOrder(ctx, &r.catalogQuerier, order)
}

func (r *OrderRepository) IngredientUsage(ctx context.Context, productID string) ([]domain.IngredientUsage, error) {
	const query = `SELECT ingredient_id, quantity FROM product_ingredients WHERE product_id = $1`

	rows, err := r.query(ctx, query, productID)
	if err != nil {
		return nil, classify(fmt.Errorf("ingredient usage: %w", err))
	}
	defer rows.Close()

	var usages []domain.IngredientUsage
	for rows.Next() {
		var u domain.IngredientUsage
		if err := rows.Scan(&u.IngredientID, &u.Quantity); err != nil {
			return nil, fmt.Errorf("scan ingredient usage: %w", err)
		}
		usages = append(usages, u)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("ingredient usage: %w", err))
	}
	return usages, nil
}

// DeductStock subtracts quantity from the ingredient and records the
// movement. The guarded UPDATE returns zero rows when stock would go
// negative, which maps to ErrInsufficientStock.
func (r *OrderRepository) DeductStock(ctx context.Context, orderID, ingredientID string, quantity decimal.Decimal) error {
	const deduct = `UPDATE ingredients SET stock = stock - $2 WHERE id = $1 AND stock >= $2`

	tag, err := r.exec(ctx, deduct, ingredientID, quantity)
	if err != nil {
		return classify(fmt.Errorf("deduct stock: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientStock
	}

	const movement = `
INSERT INTO stock_movements (order_technical_id, ingredient_id, delta)
VALUES ($1, $2, $3)`
	if _, err := r.exec(ctx, movement, orderID, ingredientID, quantity.Neg()); err != nil {
		return classify(fmt.Errorf("record stock movement: %w", err))
	}
	return nil
}

func (r *OrderRepository) AwardLoyaltyPoints(ctx context.Context, clientID string, points int) error {
	const stmt = `UPDATE clients SET loyalty_points = loyalty_points + $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, clientID, points)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return classify(fmt.Errorf("award loyalty points: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidID
	}
	return nil
}

// createOrder persists the order header, items, and item modifiers. Shared
// by the order and webhook repositories.
func createOrder(ctx context.Context, q *catalogQuerier, order domain.Order) error {
	const header = `
INSERT INTO orders (
	technical_id, sequence_number, business_date, external_id, platform,
	channel, status, payment_status, subtotal, total,
	table_id, client_id, loyalty_points, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := q.exec(ctx, header,
		order.TechnicalID,
		order.SequenceNumber,
		order.BusinessDate,
		nullable(order.ExternalID),
		nullable(order.Platform),
		order.Channel,
		order.Status,
		order.PaymentStatus,
		order.Subtotal,
		order.Total,
		nullable(order.TableID),
		nullable(order.ClientID),
		order.LoyaltyPoints,
		order.CreatedAt,
	)
	if err != nil {
		switch uniqueConstraint(err) {
		case "orders_external_id_key":
			return domain.ErrDuplicateOrder
		case "orders_business_date_sequence_number_key":
			// The allocator should make this impossible; treat a trip of the
			// backstop constraint as a conflict worth one more transaction.
			return fmt.Errorf("%w: fiscal number already taken", domain.ErrTransientConflict)
		}
		return classify(fmt.Errorf("create order: %w", err))
	}

	const itemStmt = `
INSERT INTO order_items (id, order_technical_id, product_id, name, unit_price, quantity, line_total)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	const modStmt = `
INSERT INTO order_item_modifiers (order_item_id, modifier_id, name, price)
VALUES ($1, $2, $3, $4)`

	for _, item := range order.Items {
		if _, err := q.exec(ctx, itemStmt,
			item.ID, order.TechnicalID, item.ProductID, item.Name,
			item.UnitPrice, item.Quantity, item.LineTotal,
		); err != nil {
			return classify(fmt.Errorf("create order item: %w", err))
		}
		for _, mod := range item.Modifiers {
			if _, err := q.exec(ctx, modStmt, item.ID, mod.ModifierID, mod.Name, mod.Price); err != nil {
				return classify(fmt.Errorf("create order item modifier: %w", err))
			}
		}
	}
	return nil
}
