package domain

import "github.com/shopspring/decimal"

// Product is a sellable catalog entry.
type Product struct {
	ID     string
	Name   string
	Price  decimal.Decimal
	Active bool
}

// Modifier is an optional addition to a product (extra cheese, no onion).
type Modifier struct {
	ID        string
	ProductID string
	Name      string
	Price     decimal.Decimal
	Active    bool
}

// Ingredient tracks raw stock consumed by sold products.
type Ingredient struct {
	ID    string
	Name  string
	Stock decimal.Decimal
}

// IngredientUsage maps a product to how much of an ingredient one unit consumes.
type IngredientUsage struct {
	IngredientID string
	Quantity     decimal.Decimal
}
