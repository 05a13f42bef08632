// Package retry provides the bounded retry-with-backoff loop shared by
// sequence allocation and upstream platform acceptance.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy bounds a retry loop. Backoff[i] is slept after attempt i+1 fails;
// a loop of MaxAttempts performs at most MaxAttempts-1 sleeps.
type Policy struct {
	MaxAttempts int
	Backoff     []time.Duration
}

// SequencePolicy matches the counter-row contention budget: three attempts
// with short increasing delays.
func SequencePolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Backoff:     []time.Duration{50 * time.Millisecond, 100 * time.Millisecond, 150 * time.Millisecond},
	}
}

// AcceptancePolicy matches the upstream platform acceptance budget: three
// attempts with exponential delays.
func AcceptancePolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Backoff:     []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
}

// Do runs op up to p.MaxAttempts times. Errors for which retryable returns
// false propagate immediately. Sleeps are cooperative: a cancelled context
// interrupts the wait and returns ctx.Err joined with the last failure.
func Do(ctx context.Context, p Policy, retryable func(error) bool, op func(ctx context.Context) error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	var last error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		last = op(ctx)
		if last == nil {
			return nil
		}
		if !retryable(last) {
			return last
		}
		if attempt == p.MaxAttempts-1 {
			break
		}

		if err := sleep(ctx, backoffFor(p, attempt)); err != nil {
			return fmt.Errorf("%w (while backing off from: %v)", err, last)
		}
	}
	return fmt.Errorf("retries exhausted after %d attempts: %w", p.MaxAttempts, last)
}

func backoffFor(p Policy, attempt int) time.Duration {
	if len(p.Backoff) == 0 {
		return 0
	}
	if attempt >= len(p.Backoff) {
		return p.Backoff[len(p.Backoff)-1]
	}
	return p.Backoff[attempt]
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
