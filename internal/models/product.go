package models

import "github.com/shopspring/decimal"

// ProductType groups products; some types are reserved to subscribers.
type ProductType struct {
	ID                   int    `json:"id" db:"id"`
	Name                 string `json:"name" db:"name"`
	RequiresSubscription bool   `json:"requires_subscription" db:"requires_subscription"`
}

// Product is a catalog item sold by a club.
type Product struct {
	ID           int             `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Code         string          `json:"code" db:"code"`
	SellingPrice decimal.Decimal `json:"selling_price" db:"selling_price"`
	ClubID       int             `json:"club_id" db:"club_id"`
	ProductType  *ProductType    `json:"product_type,omitempty"`
	Archived     bool            `json:"archived" db:"archived"`
}

// TypeID returns the product type id, or nil for untyped products.
func (p *Product) TypeID() *int {
	if p.ProductType == nil {
		return nil
	}
	id := p.ProductType.ID
	return &id
}

// RequiresSubscription reports whether only subscribers may buy the product.
func (p *Product) RequiresSubscription() bool {
	return p.ProductType != nil && p.ProductType.RequiresSubscription
}
