package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(Config{Driver: DriverSQLite, URL: filepath.Join(t.TempDir(), "portal.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewConnection_UnsupportedDriver(t *testing.T) {
	_, err := NewConnection(Config{Driver: "oracle"})
	assert.Error(t, err)
}

func TestDialect_ForUpdate(t *testing.T) {
	assert.Equal(t, " FOR UPDATE", Dialect{Name: DriverPostgres}.ForUpdate())
	assert.Equal(t, "", Dialect{Name: DriverSQLite}.ForUpdate())
}

func TestMigrator_UpDown(t *testing.T) {
	db := openSQLite(t)
	m := NewMigrator(db)

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)

	require.NoError(t, m.Up())
	// A second run has nothing to apply
	require.NoError(t, m.Up())

	version, dirty, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM baskets`).Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, m.Down())
	_, err = db.Exec(`SELECT COUNT(*) FROM baskets`)
	assert.Error(t, err)
}

func TestWithTx(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.RunMigrations())
	ctx := context.Background()

	err := WithTx(ctx, db.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO clubs (name) VALUES ($1)`, "AE")
		return err
	})
	require.NoError(t, err)

	err = WithTx(ctx, db.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO clubs (name) VALUES ($1)`, "Troll"); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	assert.Panics(t, func() {
		_ = WithTx(ctx, db.DB, func(tx *sql.Tx) error {
			_, _ = tx.ExecContext(ctx, `INSERT INTO clubs (name) VALUES ($1)`, "Panic")
			panic("boom")
		})
	})

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM clubs`).Scan(&count))
	assert.Equal(t, 1, count)
}
