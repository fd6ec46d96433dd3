package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CartItem is a line of the static cart shown on the summary step.
type CartItem struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Quantity      int             `json:"quantity"`
	Image         string          `json:"image"`
}

// Cart is the ordered list of items being checked out.
type Cart []CartItem

// DefaultCart is the storefront's demo cart.
func DefaultCart() Cart {
	return Cart{
		{
			ID:            1,
			Name:          "Luminous Crystal Ball Night Light with USB",
			Price:         decimal.RequireFromString("112.54"),
			OriginalPrice: decimal.RequireFromString("149.99"),
			Quantity:      1,
			Image:         "/api/placeholder/80/80",
		},
		{
			ID:            2,
			Name:          "Self Mixing Electric Auto Stirring Mug",
			Price:         decimal.RequireFromString("34.50"),
			OriginalPrice: decimal.RequireFromString("49.99"),
			Quantity:      2,
			Image:         "/api/placeholder/80/80",
		},
	}
}

// Validate enforces unique ids, positive quantities and price <= originalPrice.
func (c Cart) Validate() error {
	seen := make(map[int]bool, len(c))
	for i, it := range c {
		if seen[it.ID] {
			return fmt.Errorf("%w: item[%d] duplicate id %d", ErrInvalidCart, i, it.ID)
		}
		seen[it.ID] = true
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item[%d] quantity must be positive", ErrInvalidCart, i)
		}
		if it.Price.IsNegative() {
			return fmt.Errorf("%w: item[%d] negative price", ErrInvalidCart, i)
		}
		if it.Price.GreaterThan(it.OriginalPrice) {
			return fmt.Errorf("%w: item[%d] price %s above original %s", ErrInvalidCart, i, it.Price, it.OriginalPrice)
		}
	}
	return nil
}

// Subtotal is the sum of price x quantity.
func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// Savings is the sum of (originalPrice - price) x quantity.
func (c Cart) Savings() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c {
		sum = sum.Add(it.OriginalPrice.Sub(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}
