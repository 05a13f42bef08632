package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/clock"
	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/domain"
	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/retry"
)

type WebhookRepository interface {
	CatalogReader
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	WithSavepoint(ctx context.Context, fn func(ctx context.Context) error) error
	// CreateOrder returns domain.ErrDuplicateOrder when external_id already exists.
	CreateOrder(ctx context.Context, order domain.Order) error
	GetOrderByExternalID(ctx context.Context, platform, externalID string) (*domain.Order, error)
}

// PlatformClient accepts an order on the delivery platform that sent it.
type PlatformClient interface {
	AcceptOrder(ctx context.Context, platform, externalOrderID string) error
}

// WebhookService creates externally sourced orders at most once despite
// at-least-once redelivery from delivery marketplaces.
type WebhookService struct {
	repo        WebhookRepository
	identifiers IdentifierSource
	platform    PlatformClient
	flagger     *ReconciliationFlagger
	clock       clock.Clock
	logger      *zap.Logger
	acceptance  retry.Policy
}

func NewWebhookService(repo WebhookRepository, identifiers IdentifierSource, platform PlatformClient, flagger *ReconciliationFlagger, clk clock.Clock, logger *zap.Logger, opts ...WebhookServiceOption) *WebhookService {
	svc := &WebhookService{
		repo:        repo,
		identifiers: identifiers,
		platform:    platform,
		flagger:     flagger,
		clock:       clk,
		logger:      logger,
		acceptance:  retry.AcceptancePolicy(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type WebhookServiceOption func(*WebhookService)

// WithAcceptancePolicy overrides the retry schedule for platform acceptance.
func WithAcceptancePolicy(p retry.Policy) WebhookServiceOption {
	return func(s *WebhookService) {
		s.acceptance = p
	}
}

type DeliveryWebhookInput struct {
	Platform        string
	ExternalOrderID string
	Items           []OrderItemInput
}

type DeliveryWebhookResult struct {
	Order   domain.Order
	Created bool
}

// ProcessDeliveryWebhook is idempotent: redelivery of the same external order
// id returns the already-persisted order and reports success. There is no
// check-then-insert; the insert runs unconditionally inside a savepoint and
// the unique violation on external_id is the duplicate signal. The savepoint
// also rolls the sequence increment back on the duplicate path, so redelivery
// never burns a number.
func (s *WebhookService) ProcessDeliveryWebhook(ctx context.Context, in DeliveryWebhookInput) (DeliveryWebhookResult, error) {
	if in.Platform == "" {
		return DeliveryWebhookResult{}, domain.ErrPlatformRequired
	}
	if in.ExternalOrderID == "" {
		return DeliveryWebhookResult{}, domain.ErrExternalIDEmpty
	}
	if len(in.Items) == 0 {
		return DeliveryWebhookResult{}, domain.ErrNoItems
	}

	var result DeliveryWebhookResult

	attempt := func(ctx context.Context) error {
		return s.repo.WithTx(ctx, func(txCtx context.Context) error {
			items, subtotal, err := priceItems(txCtx, s.repo, in.Items)
			if err != nil {
				return err
			}

			var order domain.Order
			insertErr := s.repo.WithSavepoint(txCtx, func(spCtx context.Context) error {
				ident, err := s.identifiers.Generate(spCtx)
				if err != nil {
					return err
				}
				for i := range items {
					items[i].ID = uuid.NewString()
				}
				order = domain.Order{
					TechnicalID:    ident.TechnicalID,
					SequenceNumber: ident.SequenceNumber,
					BusinessDate:   ident.BusinessDate,
					ExternalID:     in.ExternalOrderID,
					Platform:       in.Platform,
					Channel:        domain.ChannelDelivery,
					Status:         domain.OrderStatusConfirmed,
					PaymentStatus:  domain.PaymentStatusPaid,
					Subtotal:       subtotal,
					Total:          subtotal,
					Items:          items,
					CreatedAt:      s.clock.Now(),
				}
				return s.repo.CreateOrder(spCtx, order)
			})
			if errors.Is(insertErr, domain.ErrDuplicateOrder) {
				existing, err := s.repo.GetOrderByExternalID(txCtx, in.Platform, in.ExternalOrderID)
				if err != nil {
					return err
				}
				if existing == nil {
					return insertErr
				}
				s.logger.Info("duplicate webhook detected",
					zap.String("platform", in.Platform),
					zap.String("external_order_id", in.ExternalOrderID),
					zap.String("technical_id", existing.TechnicalID),
				)
				result = DeliveryWebhookResult{Order: *existing, Created: false}
				return nil
			}
			if insertErr != nil {
				return insertErr
			}

			result = DeliveryWebhookResult{Order: order, Created: true}
			return nil
		})
	}

	if err := retry.Do(ctx, retry.SequencePolicy(), isTransient, attempt); err != nil {
		if errors.Is(err, domain.ErrTransientConflict) {
			return DeliveryWebhookResult{}, &domain.GenerationError{Err: err}
		}
		return DeliveryWebhookResult{}, err
	}

	if result.Created {
		s.acceptUpstream(ctx, in, result.Order)
	}

	return result, nil
}

// acceptUpstream tells the platform the order was taken. The order is already
// committed; exhausted retries flag it for manual reconciliation and the
// webhook still reports success.
func (s *WebhookService) acceptUpstream(ctx context.Context, in DeliveryWebhookInput, order domain.Order) {
	err := retry.Do(ctx, s.acceptance, func(error) bool { return true }, func(ctx context.Context) error {
		return s.platform.AcceptOrder(ctx, in.Platform, in.ExternalOrderID)
	})
	if err == nil {
		return
	}

	intErr := &domain.IntegrationError{
		Platform:   in.Platform,
		ExternalID: in.ExternalOrderID,
		Err:        err,
	}
	s.flagger.Flag(ctx, order.TechnicalID, domain.SubsystemPlatformAcceptance, in.ExternalOrderID, intErr.Error())
}

// WebhookJobHandler adapts ProcessDeliveryWebhook to a queue runner: it
// returns an error on failure (the queue owns retry and backoff) and is safe
// to re-invoke because redelivered payloads carry the same external id.
type WebhookJobHandler struct {
	service *WebhookService
}

func NewWebhookJobHandler(service *WebhookService) *WebhookJobHandler {
	return &WebhookJobHandler{service: service}
}

func (h *WebhookJobHandler) Handle(ctx context.Context, in DeliveryWebhookInput) error {
	if _, err := h.service.ProcessDeliveryWebhook(ctx, in); err != nil {
		return fmt.Errorf("process delivery webhook %s/%s: %w", in.Platform, in.ExternalOrderID, err)
	}
	return nil
}
