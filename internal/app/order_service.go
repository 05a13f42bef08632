package app

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/clock"
	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/domain"
	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/retry"
)

type OrderRepository interface {
	CatalogReader
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// WithSavepoint isolates fn so its failure does not poison the enclosing
	// transaction. Must be called inside WithTx.
	WithSavepoint(ctx context.Context, fn func(ctx context.Context) error) error
	GetOpenShift(ctx context.Context) (domain.RegisterShift, error)
	GetTableForUpdate(ctx context.Context, tableID string) (domain.Table, error)
	UpdateTableStatus(ctx context.Context, tableID string, status domain.TableStatus) error
	CreateOrder(ctx context.Context, order domain.Order) error
	IngredientUsage(ctx context.Context, productID string) ([]domain.IngredientUsage, error)
	DeductStock(ctx context.Context, orderID, ingredientID string, quantity decimal.Decimal) error
	AwardLoyaltyPoints(ctx context.Context, clientID string, points int) error
}

// IdentifierSource yields a fresh OrderIdentifier inside the current transaction.
type IdentifierSource interface {
	Generate(ctx context.Context) (domain.OrderIdentifier, error)
}

// Broadcaster pushes a committed order to the kitchen display. Runs after
// commit and must never fail the sale.
type Broadcaster interface {
	OrderCreated(order domain.Order)
}

// LoggingBroadcaster is the default Broadcaster: it only logs.
type LoggingBroadcaster struct {
	Logger *zap.Logger
}

func (b LoggingBroadcaster) OrderCreated(order domain.Order) {
	b.Logger.Info("order broadcast to kitchen display",
		zap.String("technical_id", order.TechnicalID),
		zap.Int("sequence_number", order.SequenceNumber),
	)
}

// OrderService commits a sale plus all dependent state in one atomic unit.
type OrderService struct {
	repo        OrderRepository
	identifiers IdentifierSource
	flagger     *ReconciliationFlagger
	broadcaster Broadcaster
	clock       clock.Clock
	logger      *zap.Logger
}

func NewOrderService(repo OrderRepository, identifiers IdentifierSource, flagger *ReconciliationFlagger, broadcaster Broadcaster, clk clock.Clock, logger *zap.Logger) *OrderService {
	return &OrderService{
		repo:        repo,
		identifiers: identifiers,
		flagger:     flagger,
		broadcaster: broadcaster,
		clock:       clk,
		logger:      logger,
	}
}

type CreateOrderInput struct {
	Items    []OrderItemInput
	Channel  domain.Channel
	TableID  string
	ClientID string
	Paid     bool
}

type stockFailure struct {
	ingredientID string
	detail       string
}

// CreateOrder validates the request, re-prices every line server-side, and
// persists the order, its items, stock movements, table occupancy, and
// loyalty points in one transaction. The whole transaction is retried on
// transient lock conflicts; any precondition failure aborts it with zero
// partial writes.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (domain.Order, error) {
	if len(in.Items) == 0 {
		return domain.Order{}, domain.ErrNoItems
	}
	switch in.Channel {
	case domain.ChannelDineIn, domain.ChannelTakeaway, domain.ChannelDelivery:
	default:
		return domain.Order{}, domain.ErrInvalidID
	}

	var result domain.Order
	var stockFailures []stockFailure

	attempt := func(ctx context.Context) error {
		stockFailures = stockFailures[:0]
		return s.repo.WithTx(ctx, func(txCtx context.Context) error {
			items, subtotal, err := priceItems(txCtx, s.repo, in.Items)
			if err != nil {
				return err
			}

			if _, err := s.repo.GetOpenShift(txCtx); err != nil {
				return err
			}

			if in.TableID != "" {
				table, err := s.repo.GetTableForUpdate(txCtx, in.TableID)
				if err != nil {
					return err
				}
				if table.Status != domain.TableStatusFree {
					return domain.ErrTableOccupied
				}
			}

			ident, err := s.identifiers.Generate(txCtx)
			if err != nil {
				return err
			}

			for i := range items {
				items[i].ID = uuid.NewString()
			}

			paymentStatus := domain.PaymentStatusUnpaid
			if in.Paid {
				paymentStatus = domain.PaymentStatusPaid
			}
			loyaltyPoints := 0
			if in.ClientID != "" {
				loyaltyPoints = int(subtotal.IntPart())
			}

			order := domain.Order{
				TechnicalID:    ident.TechnicalID,
				SequenceNumber: ident.SequenceNumber,
				BusinessDate:   ident.BusinessDate,
				Channel:        in.Channel,
				Status:         domain.OrderStatusConfirmed,
				PaymentStatus:  paymentStatus,
				Subtotal:       subtotal,
				Total:          subtotal,
				TableID:        in.TableID,
				ClientID:       in.ClientID,
				LoyaltyPoints:  loyaltyPoints,
				Items:          items,
				CreatedAt:      s.clock.Now(),
			}

			if err := s.repo.CreateOrder(txCtx, order); err != nil {
				return err
			}

			if err := s.deductStock(txCtx, order, &stockFailures); err != nil {
				return err
			}

			if in.TableID != "" {
				if err := s.repo.UpdateTableStatus(txCtx, in.TableID, domain.TableStatusOccupied); err != nil {
					return err
				}
			}
			if in.ClientID != "" {
				if err := s.repo.AwardLoyaltyPoints(txCtx, in.ClientID, loyaltyPoints); err != nil {
					return err
				}
			}

			result = order
			return nil
		})
	}

	err := retry.Do(ctx, retry.SequencePolicy(), isTransient, attempt)
	if err != nil {
		if errors.Is(err, domain.ErrTransientConflict) {
			return domain.Order{}, &domain.GenerationError{Err: err}
		}
		return domain.Order{}, err
	}

	for _, f := range stockFailures {
		s.flagger.Flag(ctx, result.TechnicalID, domain.SubsystemStockLedger, f.ingredientID, f.detail)
	}
	s.broadcaster.OrderCreated(result)

	return result, nil
}

// deductStock writes one stock movement per consumed ingredient. Insufficient
// stock is a precondition failure and aborts the sale; any other ledger
// failure is contained in a savepoint, remembered, and flagged after commit.
func (s *OrderService) deductStock(ctx context.Context, order domain.Order, failures *[]stockFailure) error {
	for _, item := range order.Items {
		usages, err := s.repo.IngredientUsage(ctx, item.ProductID)
		if err != nil {
			return err
		}
		for _, usage := range usages {
			quantity := usage.Quantity.Mul(decimal.NewFromInt(int64(item.Quantity)))
			err := s.repo.WithSavepoint(ctx, func(spCtx context.Context) error {
				return s.repo.DeductStock(spCtx, order.TechnicalID, usage.IngredientID, quantity)
			})
			if err == nil {
				continue
			}
			if errors.Is(err, domain.ErrInsufficientStock) {
				return err
			}
			*failures = append(*failures, stockFailure{
				ingredientID: usage.IngredientID,
				detail:       err.Error(),
			})
		}
	}
	return nil
}

func isTransient(err error) bool {
	return errors.Is(err, domain.ErrTransientConflict)
}
