package app

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/clock"
	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/domain"
)

type ReconciliationRepository interface {
	CreateFlag(ctx context.Context, flag domain.ReconciliationFlag) error
	ListFlags(ctx context.Context) ([]domain.ReconciliationFlag, error)
}

// ReconciliationFlagger records failed non-critical post-commit steps. The
// sale already happened; the flag exists so somebody fixes the fallout by
// hand instead of the system rolling back a completed order.
type ReconciliationFlagger struct {
	repo   ReconciliationRepository
	clock  clock.Clock
	logger *zap.Logger
}

func NewReconciliationFlagger(repo ReconciliationRepository, clk clock.Clock, logger *zap.Logger) *ReconciliationFlagger {
	return &ReconciliationFlagger{
		repo:   repo,
		clock:  clk,
		logger: logger,
	}
}

// Flag durably annotates orderID with a failed subsystem step and raises a
// high-severity log event. Flagging itself is best-effort: if the flag row
// cannot be written the failure is logged, never propagated.
func (f *ReconciliationFlagger) Flag(ctx context.Context, orderID, subsystem, entityID, detail string) {
	flag := domain.ReconciliationFlag{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Subsystem: subsystem,
		EntityID:  entityID,
		Detail:    detail,
		CreatedAt: f.clock.Now(),
	}

	f.logger.Error("order needs manual reconciliation",
		zap.String("order_id", orderID),
		zap.String("subsystem", subsystem),
		zap.String("entity_id", entityID),
		zap.String("detail", detail),
	)

	if err := f.repo.CreateFlag(ctx, flag); err != nil {
		f.logger.Error("failed to persist reconciliation flag",
			zap.String("order_id", orderID),
			zap.String("subsystem", subsystem),
			zap.Error(err),
		)
	}
}

// List returns all open flags for operator follow-up.
func (f *ReconciliationFlagger) List(ctx context.Context) ([]domain.ReconciliationFlag, error) {
	return f.repo.ListFlags(ctx)
}
