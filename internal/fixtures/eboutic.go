// Package fixtures creates a small, coherent eboutic catalog. It backs the
// seed-eboutic command and the integration tests.
package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"ae-portal/internal/models"
	"ae-portal/internal/repositories"
)

// Eboutic is the data created by Seed.
type Eboutic struct {
	Club    *models.Club
	Counter *models.Counter
	Bar     *models.Counter

	MembersOnlyType  *models.ProductType
	SubscriptionType *models.ProductType
	RefillingType    *models.ProductType
	GoodiesType      *models.ProductType

	Beer         *models.Product // members only, 1.70
	Sweat        *models.Product // goodies, 15.00
	Subscription *models.Product // subscription, 20.00
	Refill       *models.Product // refilling, 15.00
	BarOnly      *models.Product // sold at the bar counter only

	Subscriber *models.User // subscribed, account with 100.00
	Guest      *models.User // never subscribed, no account
	Former     *models.User // subscription expired, account with 5.00
}

// Seed creates the catalog inside one transaction
func Seed(ctx context.Context, store *repositories.Store) (*Eboutic, error) {
	data := &Eboutic{}
	err := store.InTx(ctx, func(tx *repositories.Store) error {
		return seed(ctx, tx, data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed eboutic: %w", err)
	}
	return data, nil
}

func seed(ctx context.Context, tx *repositories.Store, data *Eboutic) error {
	now := time.Now()

	data.Club = &models.Club{Name: "AE"}
	if err := tx.Clubs.Create(ctx, data.Club); err != nil {
		return err
	}

	data.Counter = &models.Counter{Name: "Eboutic", Type: models.CounterTypeEboutic}
	data.Bar = &models.Counter{Name: "Foyer", Type: models.CounterTypeBar}
	for _, c := range []*models.Counter{data.Counter, data.Bar} {
		if err := tx.Counters.Create(ctx, c); err != nil {
			return err
		}
	}

	data.MembersOnlyType = &models.ProductType{Name: "Barbar", RequiresSubscription: true}
	data.SubscriptionType = &models.ProductType{Name: "Cotisations"}
	data.RefillingType = &models.ProductType{Name: "Rechargements"}
	data.GoodiesType = &models.ProductType{Name: "Goodies"}
	for _, pt := range []*models.ProductType{data.MembersOnlyType, data.SubscriptionType, data.RefillingType, data.GoodiesType} {
		if err := tx.Products.CreateType(ctx, pt); err != nil {
			return err
		}
	}

	data.Beer = newProduct("Bière blonde", "BIERE", "1.70", data.Club, data.MembersOnlyType)
	data.Sweat = newProduct("Sweat AE", "SWEAT", "15.00", data.Club, data.GoodiesType)
	data.Subscription = newProduct("Cotisation 1 semestre", "COTIS1", "20.00", data.Club, data.SubscriptionType)
	data.Refill = newProduct("Rechargement 15 €", "RECH15", "15.00", data.Club, data.RefillingType)
	data.BarOnly = newProduct("Café", "CAFE", "0.60", data.Club, data.GoodiesType)

	for _, p := range []*models.Product{data.Beer, data.Sweat, data.Subscription, data.Refill, data.BarOnly} {
		if err := tx.Products.Create(ctx, p); err != nil {
			return err
		}
		counterID := data.Counter.ID
		if p == data.BarOnly {
			counterID = data.Bar.ID
		}
		if err := tx.Counters.AddProduct(ctx, counterID, p.ID); err != nil {
			return err
		}
	}

	nextYear := now.AddDate(1, 0, 0)
	lastYear := now.AddDate(-1, 0, 0)
	data.Subscriber = &models.User{Username: "skia", Email: "skia@example.com", FirstName: "Skia", LastName: "Guy", SubscribedUntil: &nextYear}
	data.Guest = &models.User{Username: "public", Email: "public@example.com", FirstName: "Public", LastName: "User"}
	data.Former = &models.User{Username: "old", Email: "old@example.com", FirstName: "Old", LastName: "Member", SubscribedUntil: &lastYear}
	for _, u := range []*models.User{data.Subscriber, data.Guest, data.Former} {
		if err := tx.Users.Create(ctx, u); err != nil {
			return err
		}
	}

	accounts := []*models.Customer{
		{UserID: data.Subscriber.ID, Amount: decimal.RequireFromString("100.00")},
		{UserID: data.Former.ID, Amount: decimal.RequireFromString("5.00")},
	}
	for _, c := range accounts {
		if err := tx.Customers.Create(ctx, c); err != nil {
			return err
		}
	}

	return nil
}

func newProduct(name, code, price string, club *models.Club, pt *models.ProductType) *models.Product {
	return &models.Product{
		Name:         name,
		Code:         code,
		SellingPrice: decimal.RequireFromString(price),
		ClubID:       club.ID,
		ProductType:  pt,
	}
}
