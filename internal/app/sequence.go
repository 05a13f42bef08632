package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/domain"
)

const defaultDailyCeiling = 9999

// SequenceRepository hands out the next counter value for a day key. The
// implementation must run inside the caller's transaction and must serialize
// same-key callers with a row lock; different keys proceed in parallel.
type SequenceRepository interface {
	NextValue(ctx context.Context, dayKey string) (int, error)
}

// SequenceAllocator returns gap-free increasing integers scoped to one
// trading day. It owns the sequence_counters rows exclusively.
type SequenceAllocator struct {
	repo    SequenceRepository
	logger  *zap.Logger
	ceiling int
}

func NewSequenceAllocator(repo SequenceRepository, logger *zap.Logger, opts ...SequenceOption) *SequenceAllocator {
	a := &SequenceAllocator{
		repo:    repo,
		logger:  logger,
		ceiling: defaultDailyCeiling,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type SequenceOption func(*SequenceAllocator)

// WithDailyCeiling overrides the warn-only daily sequence ceiling.
func WithDailyCeiling(n int) SequenceOption {
	return func(a *SequenceAllocator) {
		if n > 0 {
			a.ceiling = n
		}
	}
}

// Next returns the next sequence number for dayKey. Must be called inside
// the transaction that will persist the order, so an aborted creation rolls
// the increment back and never leaks a number.
func (a *SequenceAllocator) Next(ctx context.Context, dayKey string) (int, error) {
	if dayKey == "" {
		return 0, domain.ErrInvalidID
	}

	value, err := a.repo.NextValue(ctx, dayKey)
	if err != nil {
		return 0, err
	}

	// Past the ceiling the sale still goes through; operators just get told.
	if value > a.ceiling {
		a.logger.Warn("daily sequence ceiling exceeded",
			zap.String("sequence_key", dayKey),
			zap.Int("sequence_number", value),
			zap.Int("ceiling", a.ceiling),
		)
	}
	return value, nil
}
