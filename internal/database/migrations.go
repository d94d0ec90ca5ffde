package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationFiles embed.FS

// Migrator applies the embedded schema migrations for the connection's dialect.
type Migrator struct {
	db *DB
	mg *migrate.Migrate
}

func NewMigrator(db *DB) *Migrator {
	return &Migrator{db: db}
}

// Up executes all pending migrations
func (m *Migrator) Up() error {
	mg, err := m.instance()
	if err != nil {
		return err
	}

	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// Down reverts every applied migration
func (m *Migrator) Down() error {
	mg, err := m.instance()
	if err != nil {
		return err
	}

	if err := mg.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not revert migrations: %w", err)
	}
	return nil
}

// Version returns the current migration version and whether it is dirty
func (m *Migrator) Version() (uint, bool, error) {
	mg, err := m.instance()
	if err != nil {
		return 0, false, err
	}

	version, dirty, err := mg.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// instance builds a migrate.Migrate bound to the existing *sql.DB. It is never
// closed: closing it would close the shared connection pool.
func (m *Migrator) instance() (*migrate.Migrate, error) {
	if m.mg != nil {
		return m.mg, nil
	}

	source, err := iofs.New(migrationFiles, "migrations/"+m.db.Dialect.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	var driver migratedb.Driver
	switch m.db.Dialect.Name {
	case DriverPostgres:
		driver, err = postgres.WithInstance(m.db.DB, &postgres.Config{})
	case DriverSQLite:
		driver, err = sqlite3.WithInstance(m.db.DB, &sqlite3.Config{})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", m.db.Dialect.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("could not create migration driver: %w", err)
	}

	mg, err := migrate.NewWithInstance("iofs", source, m.db.Dialect.Name, driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	m.mg = mg
	return mg, nil
}
