package model

import "github.com/shopspring/decimal"

// CartLine pairs a product with a quantity of at least one.
type CartLine struct {
	Product  Product
	Quantity int
}

// LineTotal is price times quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Product.PriceDecimal().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineRecord is the persisted shape of a cart line, as written to the cart slot.
type LineRecord struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Image         string   `json:"image"`
	Description   string   `json:"description"`
	Quantity      int      `json:"quantity"`
}

// Record converts the line into its persisted shape.
func (l CartLine) Record() LineRecord {
	return LineRecord{
		ID:            l.Product.ID,
		Name:          l.Product.Name,
		Price:         l.Product.Price,
		OriginalPrice: l.Product.OriginalPrice,
		Image:         l.Product.Image,
		Description:   l.Product.Description,
		Quantity:      l.Quantity,
	}
}

// Line rebuilds a cart line from a persisted record.
func (r LineRecord) Line() CartLine {
	return CartLine{
		Product: Product{
			ID:            r.ID,
			Name:          r.Name,
			Price:         r.Price,
			OriginalPrice: r.OriginalPrice,
			Image:         r.Image,
			Description:   r.Description,
		},
		Quantity: r.Quantity,
	}
}

// Receipt snapshots a cart at checkout.
type Receipt struct {
	Total     decimal.Decimal
	ItemCount int
	Lines     []CartLine
}
