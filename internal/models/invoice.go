package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the durable receipt of a card payment.
type Invoice struct {
	ID            int           `json:"id" db:"id"`
	UserID        int           `json:"user_id" db:"user_id"`
	PaymentMethod PaymentMethod `json:"payment_method" db:"payment_method"`
	Date          time.Time     `json:"date" db:"date"`
	Validated     bool          `json:"validated" db:"validated"`
	Items         []InvoiceItem `json:"items"`
}

// InvoiceItem is an immutable snapshot of a basket line.
type InvoiceItem struct {
	ID               int             `json:"id" db:"id"`
	InvoiceID        int             `json:"invoice_id" db:"invoice_id"`
	ProductID        int             `json:"product_id" db:"product_id"`
	ProductName      string          `json:"product_name" db:"product_name"`
	TypeID           *int            `json:"type_id,omitempty" db:"type_id"`
	ProductUnitPrice decimal.Decimal `json:"product_unit_price" db:"product_unit_price"`
	Quantity         int             `json:"quantity" db:"quantity"`
}

// Total returns unit price times quantity.
func (i *InvoiceItem) Total() decimal.Decimal {
	return i.ProductUnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Total sums every item of the invoice.
func (inv *Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range inv.Items {
		total = total.Add(inv.Items[i].Total())
	}
	return total
}

// InvoiceItemsFromBasket copies every basket line into invoice items.
func InvoiceItemsFromBasket(b *Basket) []InvoiceItem {
	items := make([]InvoiceItem, 0, len(b.Items))
	for _, line := range b.Items {
		items = append(items, InvoiceItem{
			ProductID:        line.ProductID,
			ProductName:      line.ProductName,
			TypeID:           line.TypeID,
			ProductUnitPrice: line.ProductUnitPrice,
			Quantity:         line.Quantity,
		})
	}
	return items
}
