package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Basket is the mutable, session-scoped set of lines a user intends to buy.
type Basket struct {
	ID     int          `json:"id" db:"id"`
	UserID int          `json:"user_id" db:"user_id"`
	Date   time.Time    `json:"date" db:"date"`
	Items  []BasketItem `json:"items"`
}

// BasketItem snapshots the product data taken when the line was first added.
type BasketItem struct {
	ID               int             `json:"id" db:"id"`
	BasketID         int             `json:"basket_id" db:"basket_id"`
	ProductID        int             `json:"product_id" db:"product_id"`
	ProductName      string          `json:"product_name" db:"product_name"`
	TypeID           *int            `json:"type_id,omitempty" db:"type_id"`
	ProductUnitPrice decimal.Decimal `json:"product_unit_price" db:"product_unit_price"`
	Quantity         int             `json:"quantity" db:"quantity"`
}

// Total returns unit price times quantity.
func (i *BasketItem) Total() decimal.Decimal {
	return i.ProductUnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Total sums every line. An empty basket totals exactly zero.
func (b *Basket) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range b.Items {
		total = total.Add(b.Items[i].Total())
	}
	return total
}

// Item returns the line holding productID, if any.
func (b *Basket) Item(productID int) (*BasketItem, bool) {
	for i := range b.Items {
		if b.Items[i].ProductID == productID {
			return &b.Items[i], true
		}
	}
	return nil, false
}

// ContainsType reports whether any line has the given product type.
func (b *Basket) ContainsType(typeID int) bool {
	for _, item := range b.Items {
		if item.TypeID != nil && *item.TypeID == typeID {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the basket holds no line.
func (b *Basket) IsEmpty() bool {
	return len(b.Items) == 0
}

// BasketLine is the compact line representation returned by the basket API.
type BasketLine struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// BasketSummary is the JSON body of the basket API.
type BasketSummary struct {
	Total decimal.Decimal `json:"total"`
	Items []BasketLine    `json:"items"`
}

// Summary builds the basket API representation.
func (b *Basket) Summary() BasketSummary {
	lines := make([]BasketLine, 0, len(b.Items))
	for _, item := range b.Items {
		lines = append(lines, BasketLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return BasketSummary{Total: b.Total(), Items: lines}
}
