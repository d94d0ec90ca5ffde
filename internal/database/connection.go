package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type DB struct {
	*sql.DB
	Dialect Dialect
}

type Config struct {
	Driver   string
	URL      string // Full database URL, or the SQLite file path
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func NewConnection(config Config) (*DB, error) {
	driver := config.Driver
	if driver == "" {
		driver = DriverPostgres
	}

	var dsn string
	switch driver {
	case DriverPostgres:
		// Use full URL if available, otherwise construct from components
		if config.URL != "" {
			dsn = config.URL
		} else {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
				config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)
		}
	case DriverSQLite:
		dsn = fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", config.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer; one connection keeps transactions serialized
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, Dialect: Dialect{Name: driver}}, nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// RunMigrations runs all pending database migrations
func (db *DB) RunMigrations() error {
	return NewMigrator(db).Up()
}

// MigrationVersion reports the current schema version
func (db *DB) MigrationVersion() (uint, bool, error) {
	return NewMigrator(db).Version()
}
