package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"ae-portal/internal/cache"
	"ae-portal/internal/config"
	"ae-portal/internal/database"
	"ae-portal/internal/handlers"
	"ae-portal/internal/logging"
	"ae-portal/internal/metrics"
	"ae-portal/internal/middleware"
	"ae-portal/internal/repositories"
	"ae-portal/internal/services"
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
	slog.Info("database connection established", "driver", db.Dialect.Name)

	if err := db.RunMigrations(); err != nil {
		fatal("failed to run migrations", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	catalogCache, closeCache := newCatalogCache(cfg)
	defer closeCache()

	var signer *services.HMACSigner
	if cfg.Eboutic.HMACKey != "" {
		signer, err = services.NewHMACSigner(cfg.Eboutic.HMACKey)
		if err != nil {
			fatal("invalid EBOUTIC_HMAC_KEY", err)
		}
	} else {
		slog.Warn("EBOUTIC_HMAC_KEY not set, card payment requests are disabled")
	}

	var verifier *services.CallbackVerifier
	if key, err := services.LoadPublicKey(cfg.Eboutic.PublicKeyFile); err != nil {
		slog.Warn("gateway public key unavailable, every callback will be refused",
			"path", cfg.Eboutic.PublicKeyFile, "error", err)
	} else {
		verifier = services.NewCallbackVerifier(key)
	}

	store := repositories.NewStore(db)
	catalog := services.NewCatalogService(store, catalogCache, services.NewSalesGate())
	baskets := services.NewBasketService(store, m)
	checkout := services.NewCheckoutService(store, catalog, baskets, signer, cfg.Eboutic, m)
	settlement := services.NewSettlementEngine(store, verifier, cfg.Eboutic.RefillingType, m)
	accounts := services.NewAccountService(store)

	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30, // 30 days
		HttpOnly: true,
		Secure:   !cfg.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	}

	sessionMiddleware := middleware.NewSessionMiddleware(sessionStore)
	authMiddleware := middleware.NewAuthMiddleware(store.Users, sessionStore)

	eboutic := handlers.NewEbouticHandler(catalog, baskets, checkout, settlement, accounts, sessionMiddleware)
	health := handlers.NewHealthHandler(db)

	r := newRouter(m, registry, authMiddleware, eboutic, health)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server failed", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}

func newRouter(
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	auth *middleware.AuthMiddleware,
	eboutic *handlers.EbouticHandler,
	health *handlers.HealthHandler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware(m))
	r.Use(middleware.ErrorHandlingMiddleware)
	r.Use(middleware.SecureHeaders)

	r.NotFound(middleware.NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler().ServeHTTP)

	r.Get("/health", health.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))

	r.Group(func(r chi.Router) {
		r.Use(auth.LoadUser)
		r.Route("/eboutic", eboutic.Routes)
	})

	return r
}

// newCatalogCache connects to Redis when configured. The catalog falls back
// to the database when Redis is disabled or unreachable.
func newCatalogCache(cfg *config.Config) (cache.CatalogCache, func()) {
	if cfg.Redis.Addr == "" {
		slog.Info("catalog cache disabled")
		return cache.Noop{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, catalog cache disabled", "addr", cfg.Redis.Addr, "error", err)
		client.Close()
		return cache.Noop{}, func() {}
	}

	slog.Info("catalog cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Eboutic.CatalogCacheTTL)
	return cache.NewRedisCache(client, cfg.Eboutic.CatalogCacheTTL), func() { client.Close() }
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
