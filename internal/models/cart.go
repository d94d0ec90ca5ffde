package models

import (
	"encoding/json"
	"net/url"
	"strings"
)

// CartCookieName is the client-held cookie declaring the desired basket.
const CartCookieName = "basket_items"

// CartEntry is one {id, quantity} pair of the client-held cart. It is
// untrusted until checked against the catalog.
type CartEntry struct {
	ProductID int `json:"id"`
	Quantity  int `json:"quantity"`
}

type rawCartEntry struct {
	ID       *int `json:"id"`
	Quantity *int `json:"quantity"`
}

// ParseCart decodes the cart cookie value. Checks run in order: empty cart,
// malformed JSON or missing keys, then negative quantities anywhere in the cart.
// A cart whose entries all have a zero quantity is empty.
func ParseCart(value string) ([]CartEntry, error) {
	if unescaped, err := url.QueryUnescape(value); err == nil {
		value = unescaped
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrCartEmpty
	}

	var raw []rawCartEntry
	if err := json.Unmarshal([]byte(value), &raw); err != nil {
		return nil, ErrCartMalformed
	}
	if len(raw) == 0 {
		return nil, ErrCartEmpty
	}

	entries := make([]CartEntry, 0, len(raw))
	for _, r := range raw {
		if r.ID == nil || r.Quantity == nil {
			return nil, ErrCartMalformed
		}
		entries = append(entries, CartEntry{ProductID: *r.ID, Quantity: *r.Quantity})
	}

	positive := false
	for _, e := range entries {
		if e.Quantity < 0 {
			return nil, ErrCartTampered
		}
		if e.Quantity > 0 {
			positive = true
		}
	}
	if !positive {
		return nil, ErrCartEmpty
	}

	return entries, nil
}
