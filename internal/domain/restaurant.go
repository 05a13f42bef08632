package domain

import "time"

type TableStatus string

const (
	TableStatusFree     TableStatus = "free"
	TableStatusOccupied TableStatus = "occupied"
)

// Table is a physical restaurant table. Dine-in orders occupy it for the
// duration of the sale.
type Table struct {
	ID     string
	Label  string
	Status TableStatus
}

// RegisterShift is an operator's open cash session. At least one open shift
// must exist for a POS order to be accepted.
type RegisterShift struct {
	ID       string
	Operator string
	OpenedAt time.Time
	ClosedAt *time.Time
}

// SequenceCounter is the single row of global mutable state per trading day.
// Mutated only under a row lock; never deleted.
type SequenceCounter struct {
	DayKey       string
	CurrentValue int
}

// ReconciliationFlag records a non-critical post-commit step that failed for
// a committed order and needs manual follow-up.
type ReconciliationFlag struct {
	ID        string
	OrderID   string
	Subsystem string
	EntityID  string
	Detail    string
	CreatedAt time.Time
}

// Subsystems recorded on reconciliation flags.
const (
	SubsystemStockLedger        = "stock_ledger"
	SubsystemPlatformAcceptance = "platform_acceptance"
)
