package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"ae-portal/internal/metrics"
	"ae-portal/internal/models"
	"ae-portal/internal/repositories"
)

// AccountOutcome is the result of paying a basket from the internal account.
type AccountOutcome int

const (
	AccountRedirect AccountOutcome = iota
	AccountSuccess
	AccountInsufficientFunds
	AccountInternalError
)

func (o AccountOutcome) String() string {
	switch o {
	case AccountRedirect:
		return "redirect"
	case AccountSuccess:
		return "success"
	case AccountInsufficientFunds:
		return "insufficient_funds"
	default:
		return "internal_error"
	}
}

// AccountResult carries the outcome of PayWithAccount with the figures shown
// to the user.
type AccountResult struct {
	Outcome        AccountOutcome
	BasketTotal    decimal.Decimal
	CustomerAmount decimal.Decimal
	Err            error
}

// CallbackOutcome is the result of processing a gateway callback.
type CallbackOutcome int

const (
	CallbackBadRequest CallbackOutcome = iota
	CallbackBadSignature
	CallbackDeclined
	CallbackBasketMissing
	CallbackAmountMismatch
	CallbackSettled
	CallbackFailed
)

func (o CallbackOutcome) String() string {
	switch o {
	case CallbackBadRequest:
		return "bad_request"
	case CallbackBadSignature:
		return "bad_signature"
	case CallbackDeclined:
		return "declined"
	case CallbackBasketMissing:
		return "basket_missing"
	case CallbackAmountMismatch:
		return "amount_mismatch"
	case CallbackSettled:
		return "settled"
	default:
		return "failed"
	}
}

// CallbackResult carries the outcome of ProcessCallback.
type CallbackResult struct {
	Outcome   CallbackOutcome
	BasketID  int
	ErrorCode string
	InvoiceID int
	Err       error
}

// errRedirect aborts an account payment that cannot proceed
var errRedirect = errors.New("basket cannot be paid from the account")

// SettlementEngine converts a basket into its immutable settlement records,
// at most once per basket.
type SettlementEngine struct {
	store         *repositories.Store
	verifier      *CallbackVerifier
	refillingType int
	locks         *keyedMutex
	metrics       *metrics.Metrics
}

// NewSettlementEngine creates a settlement engine. verifier may be nil, in
// which case every gateway callback is refused as badly signed.
func NewSettlementEngine(store *repositories.Store, verifier *CallbackVerifier, refillingType int, m *metrics.Metrics) *SettlementEngine {
	return &SettlementEngine{
		store:         store,
		verifier:      verifier,
		refillingType: refillingType,
		locks:         newKeyedMutex(),
		metrics:       m,
	}
}

// PayWithAccount settles the session basket against the user's internal
// account. Each line becomes a selling debiting the account and the basket is
// deleted, all in one transaction.
func (e *SettlementEngine) PayWithAccount(ctx context.Context, user *models.User, basketID *int) AccountResult {
	result := e.payWithAccount(ctx, user, basketID)
	e.metrics.Settlement("account", result.Outcome.String())

	attrs := []any{"user_id", user.ID, "outcome", result.Outcome.String()}
	if basketID != nil {
		attrs = append(attrs, "basket_id", *basketID)
	}
	if result.Outcome == AccountInternalError {
		slog.ErrorContext(ctx, "account payment failed", append(attrs, "error", result.Err)...)
	} else {
		slog.InfoContext(ctx, "account payment", attrs...)
	}
	return result
}

func (e *SettlementEngine) payWithAccount(ctx context.Context, user *models.User, basketID *int) AccountResult {
	if basketID == nil {
		return AccountResult{Outcome: AccountRedirect}
	}

	unlock := e.locks.Lock(*basketID)
	defer unlock()

	var result AccountResult
	err := e.store.InTx(ctx, func(tx *repositories.Store) error {
		basket, err := tx.Baskets.GetByIDForUpdate(ctx, *basketID)
		if errors.Is(err, models.ErrBasketNotFound) {
			return errRedirect
		}
		if err != nil {
			return err
		}
		if basket.UserID != user.ID || basket.ContainsType(e.refillingType) {
			return errRedirect
		}
		result.BasketTotal = basket.Total()

		customer, err := tx.Customers.GetByUserIDForUpdate(ctx, user.ID)
		if errors.Is(err, models.ErrCustomerNotFound) {
			return errRedirect
		}
		if err != nil {
			return err
		}
		result.CustomerAmount = customer.Amount
		if !customer.CanAfford(result.BasketTotal) {
			return models.ErrInsufficientFunds
		}

		counter, err := tx.Counters.GetByType(ctx, models.CounterTypeEboutic)
		if err != nil {
			return err
		}

		for _, item := range basket.Items {
			product, err := tx.Products.GetInCounter(ctx, counter.ID, item.ProductID)
			if errors.Is(err, models.ErrProductNotFound) {
				return errRedirect
			}
			if err != nil {
				return err
			}
			selling := &models.Selling{
				Label:         item.ProductName,
				CounterID:     counter.ID,
				ClubID:        product.ClubID,
				ProductID:     &product.ID,
				SellerID:      user.ID,
				CustomerID:    customer.UserID,
				UnitPrice:     item.ProductUnitPrice,
				Quantity:      item.Quantity,
				PaymentMethod: models.PaymentSithAccount,
			}
			if err := tx.Sellings.Create(ctx, selling); err != nil {
				return err
			}
		}

		if err := tx.Baskets.Delete(ctx, basket.ID); err != nil {
			return err
		}

		after, err := tx.Customers.GetByUserID(ctx, user.ID)
		if err != nil {
			return err
		}
		result.CustomerAmount = after.Amount
		return nil
	})

	switch {
	case err == nil:
		result.Outcome = AccountSuccess
	case errors.Is(err, errRedirect):
		result.Outcome = AccountRedirect
	case errors.Is(err, models.ErrInsufficientFunds):
		result.Outcome = AccountInsufficientFunds
	default:
		result.Outcome = AccountInternalError
		result.Err = err
	}
	return result
}

// ProcessCallback handles the gateway's server-to-server payment notification.
// The signature is checked before anything is looked up. An authorized
// payment turns the basket into a validated card invoice and deletes the
// basket in one transaction; replaying the callback finds no basket.
func (e *SettlementEngine) ProcessCallback(ctx context.Context, rawQuery string) CallbackResult {
	result := e.processCallback(ctx, rawQuery)
	e.metrics.Settlement("card", result.Outcome.String())

	attrs := []any{"outcome", result.Outcome.String(), "basket_id", result.BasketID}
	switch result.Outcome {
	case CallbackSettled:
		slog.InfoContext(ctx, "card payment settled", append(attrs, "invoice_id", result.InvoiceID)...)
	case CallbackDeclined:
		slog.InfoContext(ctx, "card payment declined", append(attrs, "error_code", result.ErrorCode)...)
	case CallbackBadRequest, CallbackBadSignature:
		slog.WarnContext(ctx, "gateway callback refused", append(attrs, "error", result.Err)...)
	default:
		slog.ErrorContext(ctx, "gateway callback processing failed", append(attrs, "error", result.Err)...)
	}
	return result
}

func (e *SettlementEngine) processCallback(ctx context.Context, rawQuery string) CallbackResult {
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		return CallbackResult{Outcome: CallbackBadRequest, Err: err}
	}
	for _, key := range []string{"Amount", "BasketID", "Error", "Sig"} {
		if !params.Has(key) {
			return CallbackResult{Outcome: CallbackBadRequest, Err: fmt.Errorf("missing %s parameter", key)}
		}
	}

	if e.verifier == nil {
		return CallbackResult{Outcome: CallbackBadSignature, Err: errors.New("no gateway public key configured")}
	}
	if err := e.verifier.Verify(rawQuery); err != nil {
		return CallbackResult{Outcome: CallbackBadSignature, Err: err}
	}

	errorCode := params.Get("Error")
	if errorCode != "00000" || !params.Has("Auto") {
		return CallbackResult{Outcome: CallbackDeclined, ErrorCode: errorCode}
	}

	basketID, err := strconv.Atoi(params.Get("BasketID"))
	if err != nil {
		return CallbackResult{Outcome: CallbackFailed, Err: fmt.Errorf("invalid basket id %q: %w", params.Get("BasketID"), err)}
	}
	amount, err := strconv.ParseInt(params.Get("Amount"), 10, 64)
	if err != nil {
		return CallbackResult{Outcome: CallbackFailed, BasketID: basketID, Err: fmt.Errorf("invalid amount %q: %w", params.Get("Amount"), err)}
	}

	unlock := e.locks.Lock(basketID)
	defer unlock()

	result := CallbackResult{BasketID: basketID}
	err = e.store.InTx(ctx, func(tx *repositories.Store) error {
		basket, err := tx.Baskets.GetByIDForUpdate(ctx, basketID)
		if err != nil {
			return err
		}

		if total := AmountInCents(basket.Total()); total != amount {
			return fmt.Errorf("basket total %d and paid amount %d: %w", total, amount, models.ErrAmountMismatch)
		}

		invoice := &models.Invoice{
			UserID:        basket.UserID,
			PaymentMethod: models.PaymentCard,
			Items:         models.InvoiceItemsFromBasket(basket),
		}
		if err := tx.Invoices.Create(ctx, invoice); err != nil {
			return err
		}
		if err := e.validateInvoice(ctx, tx, invoice); err != nil {
			return err
		}
		result.InvoiceID = invoice.ID

		return tx.Baskets.Delete(ctx, basket.ID)
	})

	switch {
	case err == nil:
		result.Outcome = CallbackSettled
	case errors.Is(err, models.ErrBasketNotFound):
		result.Outcome = CallbackBasketMissing
		result.Err = err
	case errors.Is(err, models.ErrAmountMismatch):
		result.Outcome = CallbackAmountMismatch
		result.Err = err
	default:
		result.Outcome = CallbackFailed
		result.Err = err
	}
	if result.Outcome != CallbackSettled {
		result.InvoiceID = 0
	}
	return result
}

// ValidateInvoice validates an invoice in its own transaction.
func (e *SettlementEngine) ValidateInvoice(ctx context.Context, invoiceID int) error {
	return e.store.InTx(ctx, func(tx *repositories.Store) error {
		invoice, err := tx.Invoices.GetByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.Validated {
			return fmt.Errorf("invoice with id %d: %w", invoice.ID, models.ErrInvoiceValidated)
		}
		return e.validateInvoice(ctx, tx, invoice)
	})
}

// validateInvoice credits the buyer's account with every refilling line,
// opening the account if needed, then marks the invoice validated.
func (e *SettlementEngine) validateInvoice(ctx context.Context, tx *repositories.Store, invoice *models.Invoice) error {
	refill := decimal.Zero
	for i := range invoice.Items {
		item := &invoice.Items[i]
		if item.TypeID != nil && *item.TypeID == e.refillingType {
			refill = refill.Add(item.Total())
		}
	}

	if refill.IsPositive() {
		if _, err := tx.Customers.Credit(ctx, invoice.UserID, refill); err != nil {
			return fmt.Errorf("failed to credit refilling: %w", err)
		}
	}

	if err := tx.Invoices.MarkValidated(ctx, invoice.ID); err != nil {
		return err
	}
	invoice.Validated = true
	return nil
}
