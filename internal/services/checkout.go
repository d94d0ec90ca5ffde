package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"ae-portal/internal/config"
	"ae-portal/internal/metrics"
	"ae-portal/internal/models"
	"ae-portal/internal/repositories"
)

// ReturnFields asks the gateway to call back with the amount, the basket id,
// the authorization number, the error code and the signature, in that order.
const ReturnFields = "Amount:M;BasketID:R;Auto:A;Error:E;Sig:K"

var ErrSigningUnavailable = errors.New("payment request signing is not configured")

// AmountInCents converts a decimal total to integer minor units, rounding
// half away from zero.
func AmountInCents(total decimal.Decimal) int64 {
	return total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// CheckoutService turns the client-held cart into a server-side basket and
// prepares the gateway payment request.
type CheckoutService struct {
	store   *repositories.Store
	catalog *CatalogService
	baskets *BasketService
	signer  *HMACSigner
	config  config.EbouticConfig
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewCheckoutService creates a new checkout service. signer may be nil, in
// which case card payment requests cannot be built.
func NewCheckoutService(
	store *repositories.Store,
	catalog *CatalogService,
	baskets *BasketService,
	signer *HMACSigner,
	cfg config.EbouticConfig,
	m *metrics.Metrics,
) *CheckoutService {
	return &CheckoutService{
		store:   store,
		catalog: catalog,
		baskets: baskets,
		signer:  signer,
		config:  cfg,
		metrics: m,
		now:     time.Now,
	}
}

// Materialize validates every cart entry against the eboutic catalog, then
// replaces the content of the session basket with the cart. Nothing is
// written unless the whole cart is valid. A basket already referenced by the
// session is cleared and reused.
func (s *CheckoutService) Materialize(ctx context.Context, user *models.User, cookie string, sessionBasketID *int) (*models.Basket, error) {
	entries, err := models.ParseCart(cookie)
	if err != nil {
		s.reject(ctx, user, err)
		return nil, err
	}

	products := make([]*models.Product, len(entries))
	for i, entry := range entries {
		product, err := s.catalog.SellableProduct(ctx, user, entry.ProductID)
		if err != nil {
			if errors.Is(err, models.ErrProductNotFound) || errors.Is(err, models.ErrProductNotSellable) {
				err = fmt.Errorf("cart entry %d: %w: %w", entry.ProductID, models.ErrProductUnavailable, err)
				s.reject(ctx, user, err)
			}
			return nil, err
		}
		products[i] = product
	}

	var basket *models.Basket
	err = s.store.InTx(ctx, func(tx *repositories.Store) error {
		baskets := s.baskets.withStore(tx)

		current, err := baskets.GetOrCreate(ctx, sessionBasketID, user)
		if err != nil {
			return err
		}
		if err := baskets.Clear(ctx, current); err != nil {
			return err
		}

		for i, entry := range entries {
			if entry.Quantity == 0 {
				continue
			}
			if err := tx.Baskets.AddItem(ctx, current.ID, products[i], entry.Quantity); err != nil {
				return err
			}
		}

		basket, err = tx.Baskets.GetByID(ctx, current.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to materialize basket: %w", err)
	}

	slog.InfoContext(ctx, "basket materialized",
		"user_id", user.ID, "basket_id", basket.ID, "lines", len(basket.Items), "total", basket.Total().StringFixed(2))
	return basket, nil
}

func (s *CheckoutService) reject(ctx context.Context, user *models.User, err error) {
	reason := "unavailable"
	switch {
	case errors.Is(err, models.ErrCartEmpty):
		reason = "empty"
	case errors.Is(err, models.ErrCartMalformed):
		reason = "malformed"
	case errors.Is(err, models.ErrCartTampered):
		reason = "tampered"
	}
	s.metrics.CheckoutRejected(reason)

	if reason == "tampered" {
		slog.WarnContext(ctx, "cart tampering suspected", "user_id", user.ID)
		return
	}
	slog.InfoContext(ctx, "cart refused", "user_id", user.ID, "reason", reason, "error", err)
}

// BuildPaymentRequest returns the ordered gateway fields for basket, the last
// one being the MAC over all the others.
func (s *CheckoutService) BuildPaymentRequest(basket *models.Basket, user *models.User) (PaymentRequest, error) {
	if s.signer == nil {
		return nil, ErrSigningUnavailable
	}

	req := PaymentRequest{
		{Key: "PBX_SITE", Value: s.config.PBXSite},
		{Key: "PBX_RANG", Value: s.config.PBXRang},
		{Key: "PBX_IDENTIFIANT", Value: s.config.PBXIdentifiant},
		{Key: "PBX_TOTAL", Value: strconv.FormatInt(AmountInCents(basket.Total()), 10)},
		{Key: "PBX_DEVISE", Value: strconv.Itoa(s.config.Currency)},
		{Key: "PBX_CMD", Value: strconv.Itoa(basket.ID)},
		{Key: "PBX_PORTEUR", Value: user.Email},
		{Key: "PBX_RETOUR", Value: ReturnFields},
		{Key: "PBX_HASH", Value: "SHA512"},
		{Key: "PBX_TYPEPAIEMENT", Value: "CARTE"},
		{Key: "PBX_TYPECARTE", Value: "CB"},
		{Key: "PBX_TIME", Value: s.now().UTC().Format("2006-01-02T15:04:05")},
	}
	req = append(req, Field{Key: "PBX_HMAC", Value: s.signer.Sign(req.Canonical())})

	return req, nil
}
