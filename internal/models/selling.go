package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod tags how a selling or an invoice was paid.
type PaymentMethod string

const (
	PaymentSithAccount PaymentMethod = "SITH_ACCOUNT"
	PaymentCard        PaymentMethod = "CARD"
)

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentSithAccount, PaymentCard:
		return true
	default:
		return false
	}
}

// Selling records one product line sold at a counter.
type Selling struct {
	ID            int             `json:"id" db:"id"`
	Label         string          `json:"label" db:"label"`
	CounterID     int             `json:"counter_id" db:"counter_id"`
	ClubID        int             `json:"club_id" db:"club_id"`
	ProductID     *int            `json:"product_id,omitempty" db:"product_id"`
	SellerID      int             `json:"seller_id" db:"seller_id"`
	CustomerID    int             `json:"customer_id" db:"customer_id"`
	UnitPrice     decimal.Decimal `json:"unit_price" db:"unit_price"`
	Quantity      int             `json:"quantity" db:"quantity"`
	PaymentMethod PaymentMethod   `json:"payment_method" db:"payment_method"`
	Date          time.Time       `json:"date" db:"date"`
}

// Total returns unit price times quantity.
func (s *Selling) Total() decimal.Decimal {
	return s.UnitPrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
}
