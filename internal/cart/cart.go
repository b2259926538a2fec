package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one cart row. Identity is the (ProductID, VariationID) pair; a
// simple product and each variation of a variable product are distinct lines.
// UnitPrice is snapshotted when the line is first added.
type LineItem struct {
	ProductID     uuid.UUID       `json:"product_id"`
	VariationID   *uuid.UUID      `json:"variation_id,omitempty"`
	Name          string          `json:"name"`
	VariationName *string         `json:"variation_name,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Qty           int             `json:"qty"`
	Image         *string         `json:"image,omitempty"`
}

// Matches reports whether the line has the given identity.
func (l LineItem) Matches(productID uuid.UUID, variationID *uuid.UUID) bool {
	if l.ProductID != productID {
		return false
	}
	if l.VariationID == nil || variationID == nil {
		return l.VariationID == variationID
	}
	return *l.VariationID == *variationID
}

// LineTotal returns unit price times quantity.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// Cart is the persisted per-customer cart snapshot.
type Cart struct {
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// TotalQty sums the quantities across all lines.
func (c *Cart) TotalQty() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, item := range c.Items {
		total += item.Qty
	}
	return total
}

// Subtotal sums the line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	if c == nil {
		return subtotal
	}
	for _, item := range c.Items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

func (c *Cart) findLine(productID uuid.UUID, variationID *uuid.UUID) int {
	for i, item := range c.Items {
		if item.Matches(productID, variationID) {
			return i
		}
	}
	return -1
}
