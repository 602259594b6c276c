package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

type Config struct {
	ServerPort   string
	StoreBackend string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	JWTSecret    string
	SessionTTL   time.Duration
	APIBaseURL   string
	APITimeout   time.Duration
	TokenDBPath  string
}

// Load reads settings from the environment. A .env file in the working
// directory fills in variables that are not already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		StoreBackend: getEnv("STORE_BACKEND", BackendMemory),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "powderswap"),
		DBPassword:   getEnv("DB_PASSWORD", "powderswap_dev_password"),
		DBName:       getEnv("DB_NAME", "powderswap"),
		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-change-me"),
		APIBaseURL:   getEnv("API_BASE_URL", ""),
		TokenDBPath:  getEnv("TOKEN_DB_PATH", "powderswap.db"),
	}

	var err error
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.APITimeout, err = getDuration("API_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	if cfg.StoreBackend != BackendMemory && cfg.StoreBackend != BackendPostgres {
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendMemory, BackendPostgres, cfg.StoreBackend)
	}

	return cfg, nil
}

// DSN is the postgres connection string for the DB_* settings.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	val, exists := os.LookupEnv(key)
	if !exists || val == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}
