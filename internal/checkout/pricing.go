package checkout

import "github.com/shopspring/decimal"

var freeShippingEpsilon = decimal.RequireFromString("0.01")

// Rates are the fixed charges applied on top of the cart.
type Rates struct {
	Shipping    decimal.Decimal `json:"shipping"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	PlatformFee decimal.Decimal `json:"platformFee"`
}

// DefaultRates: 9.99 shipping, 8% tax, 3.99 platform fee.
func DefaultRates() Rates {
	return Rates{
		Shipping:    decimal.RequireFromString("9.99"),
		TaxRate:     decimal.RequireFromString("0.08"),
		PlatformFee: decimal.RequireFromString("3.99"),
	}
}

// LineQuote is a cart item as shown in the summary list.
type LineQuote struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Image         string          `json:"image"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	LineTotal     decimal.Decimal `json:"lineTotal"`
	PercentOff    int64           `json:"percentOff"`
}

// Breakdown is the price details panel.
type Breakdown struct {
	Items        []LineQuote     `json:"items"`
	ItemCount    int             `json:"itemCount"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Shipping     decimal.Decimal `json:"shipping"`
	FreeShipping bool            `json:"freeShipping"`
	Tax          decimal.Decimal `json:"tax"`
	PlatformFee  decimal.Decimal `json:"platformFee"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	TotalSavings decimal.Decimal `json:"totalSavings"`
}

// Quote derives the price breakdown. Total is not floored at zero.
func Quote(cart Cart, coupon Coupon, r Rates) Breakdown {
	subtotal := cart.Subtotal()
	discount := coupon.Discount()
	tax := subtotal.Mul(r.TaxRate)

	items := make([]LineQuote, 0, len(cart))
	for _, it := range cart {
		items = append(items, LineQuote{
			ID:            it.ID,
			Name:          it.Name,
			Image:         it.Image,
			Quantity:      it.Quantity,
			Price:         it.Price,
			OriginalPrice: it.OriginalPrice,
			LineTotal:     it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
			PercentOff:    percentOff(it.Price, it.OriginalPrice),
		})
	}

	return Breakdown{
		Items:        items,
		ItemCount:    len(cart),
		Subtotal:     subtotal,
		Shipping:     r.Shipping,
		FreeShipping: r.Shipping.Abs().LessThan(freeShippingEpsilon),
		Tax:          tax,
		PlatformFee:  r.PlatformFee,
		Discount:     discount,
		Total:        subtotal.Add(r.Shipping).Add(tax).Add(r.PlatformFee).Sub(discount),
		TotalSavings: cart.Savings().Add(discount),
	}
}

func percentOff(price, original decimal.Decimal) int64 {
	if !original.IsPositive() {
		return 0
	}
	return decimal.NewFromInt(1).Sub(price.Div(original)).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
