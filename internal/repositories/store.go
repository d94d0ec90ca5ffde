package repositories

import (
	"context"
	"database/sql"

	"ae-portal/internal/database"
)

// Store groups every repository behind one connection. A Store obtained from
// InTx runs all of its queries inside the same transaction.
type Store struct {
	db *database.DB

	Users     *UserRepository
	Clubs     *ClubRepository
	Counters  *CounterRepository
	Products  *ProductRepository
	Customers *CustomerRepository
	Sellings  *SellingRepository
	Baskets   *BasketRepository
	Invoices  *InvoiceRepository
}

// NewStore creates a store bound to the connection pool
func NewStore(db *database.DB) *Store {
	return newStore(db, db.DB)
}

func newStore(db *database.DB, q database.Querier) *Store {
	customers := &CustomerRepository{db: q, dialect: db.Dialect}
	return &Store{
		db:        db,
		Users:     &UserRepository{db: q},
		Clubs:     &ClubRepository{db: q},
		Counters:  &CounterRepository{db: q},
		Products:  &ProductRepository{db: q},
		Customers: customers,
		Sellings:  &SellingRepository{db: q, customers: customers},
		Baskets:   &BasketRepository{db: q, dialect: db.Dialect},
		Invoices:  &InvoiceRepository{db: q, dialect: db.Dialect},
	}
}

// InTx runs fn with a store bound to a new transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	return database.WithTx(ctx, s.db.DB, func(tx *sql.Tx) error {
		return fn(newStore(s.db, tx))
	})
}

// Dialect returns the SQL dialect of the underlying connection
func (s *Store) Dialect() database.Dialect {
	return s.db.Dialect
}

// DB returns the underlying connection
func (s *Store) DB() *database.DB {
	return s.db
}
