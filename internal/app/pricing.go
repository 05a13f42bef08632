package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/domain"
)

// CatalogReader exposes the read-only catalog lookups pricing needs.
type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	GetModifier(ctx context.Context, productID, modifierID string) (domain.Modifier, error)
}

// OrderItemInput is one requested line. Any price the caller submitted has
// already been dropped by the transport layer; only ids and quantities
// survive to this point.
type OrderItemInput struct {
	ProductID   string
	Quantity    int
	ModifierIDs []string
}

// priceItems re-fetches every product and modifier and prices the lines from
// catalog data. Returns the priced items and the order subtotal.
func priceItems(ctx context.Context, catalog CatalogReader, inputs []OrderItemInput) ([]domain.OrderItem, decimal.Decimal, error) {
	if len(inputs) == 0 {
		return nil, decimal.Zero, domain.ErrNoItems
	}

	items := make([]domain.OrderItem, 0, len(inputs))
	subtotal := decimal.Zero

	for _, in := range inputs {
		if in.ProductID == "" {
			return nil, decimal.Zero, domain.ErrInvalidID
		}
		if in.Quantity <= 0 {
			return nil, decimal.Zero, domain.ErrInvalidQuantity
		}

		product, err := catalog.GetProduct(ctx, in.ProductID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if !product.Active {
			return nil, decimal.Zero, domain.ErrProductInactive
		}

		unitPrice := product.Price
		modifiers := make([]domain.OrderItemModifier, 0, len(in.ModifierIDs))
		for _, modID := range in.ModifierIDs {
			mod, err := catalog.GetModifier(ctx, in.ProductID, modID)
			if err != nil {
				return nil, decimal.Zero, err
			}
			if !mod.Active {
				return nil, decimal.Zero, domain.ErrModifierUnknown
			}
			unitPrice = unitPrice.Add(mod.Price)
			modifiers = append(modifiers, domain.OrderItemModifier{
				ModifierID: mod.ID,
				Name:       mod.Name,
				Price:      mod.Price,
			})
		}

		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: unitPrice,
			Quantity:  in.Quantity,
			LineTotal: lineTotal,
			Modifiers: modifiers,
		})
		subtotal = subtotal.Add(lineTotal)
	}

	return items, subtotal, nil
}
