package model

import "github.com/shopspring/decimal"

// Product is an immutable catalog entry.
type Product struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Image         string   `json:"image"`
	Images        []string `json:"images,omitempty"`
	Description   string   `json:"description"`
	Dimensions    string   `json:"dimensions,omitempty"`
}

// PriceDecimal returns the unit price for money arithmetic.
func (p Product) PriceDecimal() decimal.Decimal {
	return decimal.NewFromFloat(p.Price)
}

// DiscountPercent is the rounded markdown against the original price,
// or 0 when the product has no original price.
func (p Product) DiscountPercent() int {
	if p.OriginalPrice == nil || *p.OriginalPrice <= 0 {
		return 0
	}
	orig := decimal.NewFromFloat(*p.OriginalPrice)
	pct := orig.Sub(p.PriceDecimal()).Div(orig).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}

// Gallery returns the product's images, falling back to the primary image.
func (p Product) Gallery() []string {
	if len(p.Images) > 0 {
		return p.Images
	}
	return []string{p.Image}
}
