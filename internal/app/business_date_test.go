package app

import (
	"testing"
	"time"

	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/clock"
)

func TestBusinessDateCalculator(t *testing.T) {
	t.Parallel()

	t.Run("before cutoff belongs to previous day", func(t *testing.T) {
		// 2026-01-19 05:59:59 local is still the night of the 18th.
		now := time.Date(2026, 1, 19, 5, 59, 59, 0, time.UTC)
		calc := NewBusinessDateCalculator(clock.NewFixed(now), WithLocation(time.UTC))

		got := calc.BusinessDate()
		want := time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("expected %s, got %s", want, got)
		}
	})

	t.Run("at cutoff belongs to current day", func(t *testing.T) {
		now := time.Date(2026, 1, 19, 6, 0, 0, 0, time.UTC)
		calc := NewBusinessDateCalculator(clock.NewFixed(now), WithLocation(time.UTC))

		got := calc.BusinessDate()
		want := time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("expected %s, got %s", want, got)
		}
	})

	t.Run("cutoff is evaluated in the configured location", func(t *testing.T) {
		// 08:30 UTC is 05:30 in Buenos Aires (UTC-3): still the previous
		// trading day there.
		loc := time.FixedZone("ART", -3*60*60)
		now := time.Date(2026, 1, 19, 8, 30, 0, 0, time.UTC)
		calc := NewBusinessDateCalculator(clock.NewFixed(now), WithLocation(loc))

		got := calc.BusinessDate()
		want := time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("expected %s, got %s", want, got)
		}
	})

	t.Run("custom cutoff hour", func(t *testing.T) {
		now := time.Date(2026, 1, 19, 3, 0, 0, 0, time.UTC)
		calc := NewBusinessDateCalculator(clock.NewFixed(now), WithLocation(time.UTC), WithCutoffHour(2))

		got := calc.BusinessDate()
		want := time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("expected %s, got %s", want, got)
		}
	})

	t.Run("midnight crosses month boundary", func(t *testing.T) {
		now := time.Date(2026, 2, 1, 1, 0, 0, 0, time.UTC)
		calc := NewBusinessDateCalculator(clock.NewFixed(now), WithLocation(time.UTC))

		got := calc.BusinessDate()
		want := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("expected %s, got %s", want, got)
		}
	})
}

func TestSequenceKey(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC)
	if got := SequenceKey(date); got != "20260119" {
		t.Fatalf("expected 20260119, got %s", got)
	}
}
