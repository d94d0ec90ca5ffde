// Package testutil provides SQLite-backed databases for integration tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ae-portal/internal/database"
	"ae-portal/internal/fixtures"
	"ae-portal/internal/repositories"
)

// NewDB opens a migrated SQLite database in a temporary directory. It is
// closed when the test ends.
func NewDB(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.NewConnection(database.Config{
		Driver: database.DriverSQLite,
		URL:    filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RunMigrations())
	return db
}

// NewStore returns a store over a fresh database together with the seeded
// eboutic catalog.
func NewStore(t testing.TB) (*repositories.Store, *fixtures.Eboutic) {
	t.Helper()

	store := repositories.NewStore(NewDB(t))
	data, err := fixtures.Seed(context.Background(), store)
	require.NoError(t, err)
	return store, data
}
