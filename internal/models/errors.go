package models

import "errors"

// Common errors used throughout the application
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrBasketNotFound     = errors.New("basket not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrProductNotSellable = errors.New("product cannot be sold to this user")
	ErrCounterNotFound    = errors.New("counter not found")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrInvoiceValidated   = errors.New("invoice already validated")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrAmountMismatch     = errors.New("paid amount does not match basket total")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrInvalidInput       = errors.New("invalid input")

	// Cart cookie validation
	ErrCartEmpty          = errors.New("cart is empty")
	ErrCartMalformed      = errors.New("cart is malformed")
	ErrCartTampered       = errors.New("cart tampering suspected")
	ErrProductUnavailable = errors.New("product unavailable in the eboutic")
)
