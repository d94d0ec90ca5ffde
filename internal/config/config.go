package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Eboutic  EbouticConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type DatabaseConfig struct {
	Driver   string // "postgres" or "sqlite3"
	URL      string // Full database URL, or the SQLite file path
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type SessionConfig struct {
	Secret string
}

// EbouticConfig holds the payment gateway credentials and the product type
// identifiers the checkout relies on.
type EbouticConfig struct {
	PBXSite          string
	PBXRang          string
	PBXIdentifiant   string
	HMACKey          string // hex encoded
	PublicKeyFile    string // PEM encoded gateway public key
	Currency         int
	SubscriptionType int
	RefillingType    int
	CatalogCacheTTL  time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "localhost"),
			Env:  getEnv("ENV", "development"),
		},
		Database: parseDatabaseConfig(),
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
		},
		Eboutic: EbouticConfig{
			PBXSite:          getEnv("EBOUTIC_PBX_SITE", "1999888"),
			PBXRang:          getEnv("EBOUTIC_PBX_RANG", "32"),
			PBXIdentifiant:   getEnv("EBOUTIC_PBX_IDENTIFIANT", "2"),
			HMACKey:          getEnv("EBOUTIC_HMAC_KEY", ""),
			PublicKeyFile:    getEnv("EBOUTIC_PUBLIC_KEY_FILE", "keys/gateway_public.pem"),
			Currency:         getEnvAsInt("EBOUTIC_CURRENCY", 978), // Euro, the only value the gateway accepts
			SubscriptionType: getEnvAsInt("EBOUTIC_SUBSCRIPTION_TYPE_ID", 2),
			RefillingType:    getEnvAsInt("EBOUTIC_REFILLING_TYPE_ID", 3),
			CatalogCacheTTL:  time.Duration(getEnvAsInt("CATALOG_CACHE_TTL_SECONDS", 60)) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
	}

	return config, nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func parseDatabaseConfig() DatabaseConfig {
	driver := getEnv("DB_DRIVER", "postgres")

	// Check if DATABASE_URL is provided
	databaseURL := getEnv("DATABASE_URL", "")
	if driver == "sqlite3" {
		if databaseURL == "" {
			databaseURL = "ae-portal.db"
		}
		return DatabaseConfig{Driver: driver, URL: databaseURL}
	}
	if databaseURL != "" {
		config := parseDatabaseURL(databaseURL)
		config.Driver = driver
		return config
	}

	// Fall back to individual environment variables
	return DatabaseConfig{
		Driver:   driver,
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "ae_portal"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func parseDatabaseURL(databaseURL string) DatabaseConfig {
	config := DatabaseConfig{
		URL: databaseURL,
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		// If parsing fails, return the URL as-is
		return config
	}

	config.Host = u.Hostname()
	if u.Port() != "" {
		config.Port, _ = strconv.Atoi(u.Port())
	} else {
		config.Port = 5432 // Default PostgreSQL port
	}

	if u.User != nil {
		config.User = u.User.Username()
		config.Password, _ = u.User.Password()
	}

	// Remove leading slash from path to get database name
	config.DBName = strings.TrimPrefix(u.Path, "/")

	config.SSLMode = u.Query().Get("sslmode")
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
