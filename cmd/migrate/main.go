package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"ae-portal/internal/config"
	"ae-portal/internal/database"
	"ae-portal/internal/logging"
)

func main() {
	var (
		statusFlag = flag.Bool("status", false, "Show migration status")
		upFlag     = flag.Bool("up", false, "Run pending migrations")
		downFlag   = flag.Bool("down", false, "Revert every migration")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fatal("failed to load config", err)
	}
	logging.InitLogger(cfg.Server.Env)

	dbConfig := database.Config{
		Driver:   cfg.Database.Driver,
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	}

	db, err := database.NewConnection(dbConfig)
	if err != nil {
		fatal("failed to connect to database", err)
	}
	defer db.Close()

	migrator := database.NewMigrator(db)

	switch {
	case *statusFlag:
		version, dirty, err := migrator.Version()
		if err != nil {
			fatal("failed to get migration status", err)
		}
		fmt.Printf("driver=%s version=%d dirty=%t\n", db.Dialect.Name, version, dirty)
	case *upFlag:
		if err := migrator.Up(); err != nil {
			fatal("failed to run migrations", err)
		}
		slog.Info("migrations applied", "driver", db.Dialect.Name)
	case *downFlag:
		if err := migrator.Down(); err != nil {
			fatal("failed to revert migrations", err)
		}
		slog.Info("migrations reverted", "driver", db.Dialect.Name)
	default:
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/migrate -status   # Show migration status")
		fmt.Println("  go run ./cmd/migrate -up       # Run pending migrations")
		fmt.Println("  go run ./cmd/migrate -down     # Revert every migration")
		os.Exit(1)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
