package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

type Channel string

const (
	ChannelDineIn   Channel = "dine_in"
	ChannelTakeaway Channel = "takeaway"
	ChannelDelivery Channel = "delivery"
)

// OrderIdentifier carries the three pieces of an order's identity: a random
// technical id, the per-day fiscal sequence number, and the trading day the
// number belongs to. (BusinessDate, SequenceNumber) is unique across time.
type OrderIdentifier struct {
	TechnicalID    string
	SequenceNumber int
	BusinessDate   time.Time
}

// Order represents a committed sale.
type Order struct {
	TechnicalID    string
	SequenceNumber int
	BusinessDate   time.Time
	ExternalID     string
	Platform       string
	Channel        Channel
	Status         OrderStatus
	PaymentStatus  PaymentStatus
	Subtotal       decimal.Decimal
	Total          decimal.Decimal
	TableID        string
	ClientID       string
	LoyaltyPoints  int
	Items          []OrderItem
	CreatedAt      time.Time
}

// OrderItem is one priced line of an order. UnitPrice and LineTotal are
// always derived from the catalog, never from caller input.
type OrderItem struct {
	ID        string
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	LineTotal decimal.Decimal
	Modifiers []OrderItemModifier
}

type OrderItemModifier struct {
	ModifierID string
	Name       string
	Price      decimal.Decimal
}
