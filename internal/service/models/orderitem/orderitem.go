package orderitem

import (
	"github.com/shopspring/decimal"
)

// OrderItem represents a line item within an order.
// Items are owned by their order and never change after creation.
type OrderItem struct {
	ProductRef string          `json:"productRef"`
	VariantID  string          `json:"variantId,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Size       string          `json:"size,omitempty"`
	Color      string          `json:"color,omitempty"`
}

// Subtotal returns quantity * unit price.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
