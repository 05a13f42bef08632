package app

import (
	"time"

	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/clock"
)

const defaultCutoffHour = 6

// BusinessDateCalculator maps wall-clock time to the operational trading day.
// Sales rung up before the cutoff hour belong to the previous calendar date,
// so one night of trading never splits across two fiscal sequences.
type BusinessDateCalculator struct {
	clock      clock.Clock
	location   *time.Location
	cutoffHour int
}

func NewBusinessDateCalculator(clk clock.Clock, opts ...BusinessDateOption) *BusinessDateCalculator {
	c := &BusinessDateCalculator{
		clock:      clk,
		location:   time.Local,
		cutoffHour: defaultCutoffHour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type BusinessDateOption func(*BusinessDateCalculator)

// WithLocation sets the timezone the trading day is evaluated in.
func WithLocation(loc *time.Location) BusinessDateOption {
	return func(c *BusinessDateCalculator) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithCutoffHour overrides the default 6 AM trading-day cutoff.
func WithCutoffHour(hour int) BusinessDateOption {
	return func(c *BusinessDateCalculator) {
		if hour >= 0 && hour < 24 {
			c.cutoffHour = hour
		}
	}
}

// BusinessDate returns the trading day for the current instant. Callers must
// compute it exactly once per identifier and propagate that single value to
// both the sequence key and the persisted order; recomputing mid-operation
// can drift across the cutoff.
func (c *BusinessDateCalculator) BusinessDate() time.Time {
	return c.businessDateAt(c.clock.Now())
}

func (c *BusinessDateCalculator) businessDateAt(t time.Time) time.Time {
	local := t.In(c.location)
	if local.Hour() < c.cutoffHour {
		local = local.AddDate(0, 0, -1)
	}
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// SequenceKey derives the counter-row key for a business date, e.g. "20260119".
func SequenceKey(businessDate time.Time) string {
	return businessDate.Format("20060102")
}
