package domain

import (
	"errors"
	"fmt"
)

// Validation errors: bad input, never retryable.
var (
	ErrNoItems          = errors.New("order has no items")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidID        = errors.New("invalid id")
	ErrPlatformRequired = errors.New("platform required")
	ErrExternalIDEmpty  = errors.New("external order id required")
)

// Precondition errors: the request is well-formed but the restaurant state
// rejects it. Not retryable without operator correction.
var (
	ErrNoOpenShift       = errors.New("no open register shift")
	ErrTableNotFound     = errors.New("table not found")
	ErrTableOccupied     = errors.New("table occupied")
	ErrProductNotFound   = errors.New("product not found")
	ErrProductInactive   = errors.New("product inactive")
	ErrModifierUnknown   = errors.New("unknown modifier")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ErrDuplicateOrder marks a unique-constraint hit on external_id. It is the
// idempotent-success signal, never surfaced to webhook callers as a failure.
var ErrDuplicateOrder = errors.New("duplicate external order")

// ErrTransientConflict marks a lock timeout, deadlock, or serialization
// failure. The enclosing transaction may be retried; a Postgres transaction
// is poisoned after such an error, so retries must re-run the whole closure.
var ErrTransientConflict = errors.New("transient storage conflict")

// ErrIdentifierInvalid means a freshly generated identifier failed its own
// format check. This is a systemic bug, not a retryable condition.
var ErrIdentifierInvalid = errors.New("generated identifier failed validation")

// GenerationError wraps a failure to produce an order identifier. Fatal class:
// the enclosing order creation must abort and an operator must be alerted.
type GenerationError struct {
	TechnicalID string
	SequenceKey string
	Err         error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("identifier generation failed (key=%s): %v", e.SequenceKey, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IntegrationError wraps an upstream platform call that failed after all
// retries. The order it refers to is already committed and must stand.
type IntegrationError struct {
	Platform   string
	ExternalID string
	Err        error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("platform %s rejected acceptance of %s: %v", e.Platform, e.ExternalID, e.Err)
}

func (e *IntegrationError) Unwrap() error { return e.Err }
