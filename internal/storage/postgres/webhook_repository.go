package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/domain"
)

// WebhookRepository backs webhook-driven order creation. The unique index on
// external_id is the deduplication mechanism: CreateOrder is attempted
// unconditionally and the constraint decides.
type WebhookRepository struct {
	catalogQuerier
}

func NewWebhookRepository(pool *pgxpool.Pool) *WebhookRepository {
	return &WebhookRepository{catalogQuerier{pool: pool}}
}

func (r *WebhookRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *WebhookRepository) WithSavepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	return withSavepoint(ctx, fn)
}

func (r *WebhookRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	return createOrder(ctx, &r.catalogQuerier, order)
}

func (r *WebhookRepository) GetOrderByExternalID(ctx context.Context, platform, externalID string) (*domain.Order, error) {
	const query = `
SELECT technical_id, sequence_number, business_date, external_id, platform,
	channel, status, payment_status, subtotal, total, created_at
FROM orders
WHERE platform = $1 AND external_id = $2`

	var o domain.Order
	var channel, status, paymentStatus string
	err := r.queryRow(ctx, query, platform, externalID).Scan(
		&o.TechnicalID, &o.SequenceNumber, &o.BusinessDate, &o.ExternalID, &o.Platform,
		&channel, &status, &paymentStatus, &o.Subtotal, &o.Total, &o.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, classify(fmt.Errorf("get order by external id: %w", err))
	}
	o.Channel = domain.Channel(channel)
	o.Status = domain.OrderStatus(status)
	o.PaymentStatus = domain.PaymentStatus(paymentStatus)
	return &o, nil
}
