package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/domain"
	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/testutil"
)

var orderDay = time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC)

func minimalOrder(seq int) domain.Order {
	return domain.Order{
		TechnicalID:    uuid.NewString(),
		SequenceNumber: seq,
		BusinessDate:   orderDay,
		Channel:        domain.ChannelTakeaway,
		Status:         domain.OrderStatusConfirmed,
		PaymentStatus:  domain.PaymentStatusUnpaid,
		Subtotal:       decimal.RequireFromString("10.00"),
		Total:          decimal.RequireFromString("10.00"),
		CreatedAt:      time.Now().UTC(),
	}
}

func TestOrderRepository_CreateOrder(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)

	repo := NewOrderRepository(pool)

	t.Run("persists header, items, and modifiers", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)
		productID := testutil.InsertProduct(t, ctx, pool, "Burger", "10.50", true)
		modifierID := testutil.InsertModifier(t, ctx, pool, productID, "Cheese", "1.25")

		order := minimalOrder(1)
		order.Items = []domain.OrderItem{{
			ID:        uuid.NewString(),
			ProductID: productID,
			Name:      "Burger",
			UnitPrice: decimal.RequireFromString("10.50"),
			Quantity:  2,
			LineTotal: decimal.RequireFromString("23.50"),
			Modifiers: []domain.OrderItemModifier{{
				ModifierID: modifierID,
				Name:       "Cheese",
				Price:      decimal.RequireFromString("1.25"),
			}},
		}}

		if err := repo.CreateOrder(ctx, order); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var itemCount, modCount int
		if err := pool.QueryRow(ctx,
			`SELECT count(*) FROM order_items WHERE order_technical_id = $1`, order.TechnicalID,
		).Scan(&itemCount); err != nil {
			t.Fatalf("count items: %v", err)
		}
		if err := pool.QueryRow(ctx,
			`SELECT count(*) FROM order_item_modifiers WHERE order_item_id = $1`, order.Items[0].ID,
		).Scan(&modCount); err != nil {
			t.Fatalf("count modifiers: %v", err)
		}
		if itemCount != 1 || modCount != 1 {
			t.Fatalf("expected 1 item and 1 modifier, got %d and %d", itemCount, modCount)
		}
	})

	t.Run("duplicate external id is ErrDuplicateOrder", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		first := minimalOrder(1)
		first.ExternalID = "RAPPI-1"
		first.Platform = "rappi"
		first.Channel = domain.ChannelDelivery
		first.PaymentStatus = domain.PaymentStatusPaid
		if err := repo.CreateOrder(ctx, first); err != nil {
			t.Fatalf("first insert: %v", err)
		}

		second := minimalOrder(2)
		second.ExternalID = "RAPPI-1"
		second.Platform = "rappi"
		second.Channel = domain.ChannelDelivery
		second.PaymentStatus = domain.PaymentStatusPaid
		if err := repo.CreateOrder(ctx, second); !errors.Is(err, domain.ErrDuplicateOrder) {
			t.Fatalf("expected ErrDuplicateOrder, got %v", err)
		}
	})

	t.Run("fiscal number collision is transient", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		if err := repo.CreateOrder(ctx, minimalOrder(1)); err != nil {
			t.Fatalf("first insert: %v", err)
		}
		if err := repo.CreateOrder(ctx, minimalOrder(1)); !errors.Is(err, domain.ErrTransientConflict) {
			t.Fatalf("expected ErrTransientConflict, got %v", err)
		}
	})
}

func TestOrderRepository_Shifts(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)

	repo := NewOrderRepository(pool)

	t.Run("no open shift", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		_, err := repo.GetOpenShift(ctx)
		if !errors.Is(err, domain.ErrNoOpenShift) {
			t.Fatalf("expected ErrNoOpenShift, got %v", err)
		}
	})

	t.Run("returns the open shift", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)
		shiftID := testutil.OpenShift(t, ctx, pool, "ana")

		shift, err := repo.GetOpenShift(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if shift.ID != shiftID || shift.Operator != "ana" {
			t.Fatalf("unexpected shift: %+v", shift)
		}
	})
}

func TestOrderRepository_Tables(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)

	repo := NewOrderRepository(pool)

	t.Run("status round trip", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)
		tableID := testutil.InsertTable(t, ctx, pool, "T7", "free")

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			tbl, err := repo.GetTableForUpdate(txCtx, tableID)
			if err != nil {
				return err
			}
			if tbl.Status != domain.TableStatusFree {
				t.Fatalf("expected free, got %s", tbl.Status)
			}
			return repo.UpdateTableStatus(txCtx, tableID, domain.TableStatusOccupied)
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		err = repo.WithTx(ctx, func(txCtx context.Context) error {
			tbl, err := repo.GetTableForUpdate(txCtx, tableID)
			if err != nil {
				return err
			}
			if tbl.Status != domain.TableStatusOccupied {
				t.Fatalf("expected occupied, got %s", tbl.Status)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("unknown table", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			_, err := repo.GetTableForUpdate(txCtx, uuid.NewString())
			return err
		})
		if !errors.Is(err, domain.ErrTableNotFound) {
			t.Fatalf("expected ErrTableNotFound, got %v", err)
		}
	})

	t.Run("malformed id", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			_, err := repo.GetTableForUpdate(txCtx, "table-seven")
			return err
		})
		if !errors.Is(err, domain.ErrInvalidID) {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})
}

func TestOrderRepository_Stock(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)

	repo := NewOrderRepository(pool)

	seedOrder := func(t *testing.T) domain.Order {
		t.Helper()
		order := minimalOrder(1)
		if err := repo.CreateOrder(ctx, order); err != nil {
			t.Fatalf("seed order: %v", err)
		}
		return order
	}

	t.Run("deduction records a movement", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)
		ingredientID := testutil.InsertIngredient(t, ctx, pool, "beef", "5.000")
		order := seedOrder(t)

		if err := repo.DeductStock(ctx, order.TechnicalID, ingredientID, decimal.RequireFromString("0.4")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var stock decimal.Decimal
		if err := pool.QueryRow(ctx, `SELECT stock FROM ingredients WHERE id = $1`, ingredientID).Scan(&stock); err != nil {
			t.Fatalf("read stock: %v", err)
		}
		if !stock.Equal(decimal.RequireFromString("4.6")) {
			t.Fatalf("expected stock 4.6, got %s", stock)
		}

		var delta decimal.Decimal
		if err := pool.QueryRow(ctx,
			`SELECT delta FROM stock_movements WHERE order_technical_id = $1 AND ingredient_id = $2`,
			order.TechnicalID, ingredientID,
		).Scan(&delta); err != nil {
			t.Fatalf("read movement: %v", err)
		}
		if !delta.Equal(decimal.RequireFromString("-0.4")) {
			t.Fatalf("expected delta -0.4, got %s", delta)
		}
	})

	t.Run("insufficient stock leaves nothing behind", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)
		ingredientID := testutil.InsertIngredient(t, ctx, pool, "beef", "0.100")
		order := seedOrder(t)

		err := repo.DeductStock(ctx, order.TechnicalID, ingredientID, decimal.RequireFromString("0.4"))
		if !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock, got %v", err)
		}

		var stock decimal.Decimal
		if err := pool.QueryRow(ctx, `SELECT stock FROM ingredients WHERE id = $1`, ingredientID).Scan(&stock); err != nil {
			t.Fatalf("read stock: %v", err)
		}
		if !stock.Equal(decimal.RequireFromString("0.1")) {
			t.Fatalf("expected stock untouched, got %s", stock)
		}

		var movements int
		if err := pool.QueryRow(ctx, `SELECT count(*) FROM stock_movements`).Scan(&movements); err != nil {
			t.Fatalf("count movements: %v", err)
		}
		if movements != 0 {
			t.Fatalf("expected no movements, got %d", movements)
		}
	})
}

func TestOrderRepository_LoyaltyPoints(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)

	repo := NewOrderRepository(pool)

	t.Run("accumulates", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)
		clientID := testutil.InsertClient(t, ctx, pool, "maria")

		if err := repo.AwardLoyaltyPoints(ctx, clientID, 23); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := repo.AwardLoyaltyPoints(ctx, clientID, 7); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var points int
		if err := pool.QueryRow(ctx, `SELECT loyalty_points FROM clients WHERE id = $1`, clientID).Scan(&points); err != nil {
			t.Fatalf("read points: %v", err)
		}
		if points != 30 {
			t.Fatalf("expected 30 points, got %d", points)
		}
	})

	t.Run("unknown client", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		if err := repo.AwardLoyaltyPoints(ctx, uuid.NewString(), 5); !errors.Is(err, domain.ErrInvalidID) {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})
}

func countOrders(t *testing.T, ctx context.Context, pool *pgxpool.Pool) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&n); err != nil {
		t.Fatalf("count orders: %v", err)
	}
	return n
}
