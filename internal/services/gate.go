package services

import (
	"time"

	"ae-portal/internal/models"
)

// SalesGate decides whether a product may be sold to a user.
type SalesGate struct {
	now func() time.Time
}

func NewSalesGate() *SalesGate {
	return &SalesGate{now: time.Now}
}

// CanBeSoldTo refuses subscriber-only products to users without a running
// subscription. Everything else is allowed.
func (g *SalesGate) CanBeSoldTo(product *models.Product, user *models.User) bool {
	if product == nil || user == nil {
		return false
	}
	if product.RequiresSubscription() {
		return user.IsSubscriber(g.now())
	}
	return true
}
