package models

import "github.com/shopspring/decimal"

// Customer is the internal prepaid account of a user.
type Customer struct {
	UserID    int             `json:"user_id" db:"user_id"`
	AccountID string          `json:"account_id" db:"account_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
}

// CanAfford reports whether the balance covers total.
func (c *Customer) CanAfford(total decimal.Decimal) bool {
	return c.Amount.GreaterThanOrEqual(total)
}
