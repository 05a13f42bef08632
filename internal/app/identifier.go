package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/domain"
)

const slowGenerationThreshold = 100 * time.Millisecond

// SequenceSource is the slice of the allocator the generator needs.
type SequenceSource interface {
	Next(ctx context.Context, dayKey string) (int, error)
}

// OrderIdentifierGenerator combines a random technical id, the trading day,
// and an allocated per-day sequence number into one OrderIdentifier.
type OrderIdentifierGenerator struct {
	dates     *BusinessDateCalculator
	sequences SequenceSource
	logger    *zap.Logger
}

func NewOrderIdentifierGenerator(dates *BusinessDateCalculator, sequences SequenceSource, logger *zap.Logger) *OrderIdentifierGenerator {
	return &OrderIdentifierGenerator{
		dates:     dates,
		sequences: sequences,
		logger:    logger,
	}
}

// Generate must be called inside the transaction that persists the order.
// The business date is computed exactly once and feeds both the sequence key
// and the returned identifier.
func (g *OrderIdentifierGenerator) Generate(ctx context.Context) (domain.OrderIdentifier, error) {
	start := time.Now()

	technicalID := uuid.NewString()
	if _, err := uuid.Parse(technicalID); err != nil {
		// A malformed id out of our own generator is a systemic bug. Fail
		// hard and loud; retrying would only mask it.
		genErr := &domain.GenerationError{
			TechnicalID: technicalID,
			Err:         fmt.Errorf("%w: %v", domain.ErrIdentifierInvalid, err),
		}
		g.logger.Error("technical id failed self-validation", zap.String("technical_id", technicalID), zap.Error(err))
		return domain.OrderIdentifier{}, genErr
	}

	businessDate := g.dates.BusinessDate()
	sequenceKey := SequenceKey(businessDate)

	sequenceNumber, err := g.sequences.Next(ctx, sequenceKey)
	if err != nil {
		return domain.OrderIdentifier{}, err
	}

	latency := time.Since(start)
	fields := []zap.Field{
		zap.String("technical_id", technicalID),
		zap.Int("sequence_number", sequenceNumber),
		zap.String("business_date", businessDate.Format("2006-01-02")),
		zap.String("sequence_key", sequenceKey),
		zap.Int64("generation_latency_ms", latency.Milliseconds()),
	}
	if latency > slowGenerationThreshold {
		g.logger.Warn("slow order identifier generation", fields...)
	} else {
		g.logger.Info("order identifier generated", fields...)
	}

	return domain.OrderIdentifier{
		TechnicalID:    technicalID,
		SequenceNumber: sequenceNumber,
		BusinessDate:   businessDate,
	}, nil
}
