package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"ae-portal/internal/config"
	"ae-portal/internal/database"
	"ae-portal/internal/fixtures"
	"ae-portal/internal/logging"
	"ae-portal/internal/repositories"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal("failed to load configuration", err)
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

	if err := db.RunMigrations(); err != nil {
		fatal("failed to run migrations", err)
	}

	data, err := fixtures.Seed(context.Background(), repositories.NewStore(db))
	if err != nil {
		fatal("failed to seed", err)
	}

	fmt.Println("Eboutic seeded")
	fmt.Printf("  counter      %-12s id=%d\n", data.Counter.Name, data.Counter.ID)
	fmt.Printf("  refilling    type id=%d (set EBOUTIC_REFILLING_TYPE_ID)\n", data.RefillingType.ID)
	fmt.Printf("  subscription type id=%d (set EBOUTIC_SUBSCRIPTION_TYPE_ID)\n", data.SubscriptionType.ID)
	for _, u := range []struct {
		label string
		id    int
		name  string
	}{
		{"subscriber", data.Subscriber.ID, data.Subscriber.Username},
		{"guest", data.Guest.ID, data.Guest.Username},
		{"former", data.Former.ID, data.Former.Username},
	} {
		fmt.Printf("  %-12s %-12s user_id=%d\n", u.label, u.name, u.id)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
