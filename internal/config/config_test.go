package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		// Setenv registers the restore, Unsetenv clears it for this test.
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "SERVER_PORT", "STORE_BACKEND", "SESSION_TTL", "API_TIMEOUT", "API_BASE_URL", "TOKEN_DB_PATH")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Equal(t, "powderswap.db", cfg.TokenDBPath)
	assert.Empty(t, cfg.APIBaseURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORE_BACKEND", BackendPostgres)
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_PASSWORD", "p")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_NAME", "market")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, "postgres://u:p@db:5433/market?sslmode=disable", cfg.DSN())
}

func TestLoad_Rejects(t *testing.T) {
	t.Setenv("STORE_BACKEND", "redis")
	_, err := Load()
	assert.ErrorContains(t, err, "STORE_BACKEND")

	t.Setenv("STORE_BACKEND", BackendMemory)
	t.Setenv("SESSION_TTL", "forever")
	_, err = Load()
	assert.ErrorContains(t, err, "SESSION_TTL")
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("SERVER_PORT=7070\nAPI_BASE_URL=https://dotenv.example.com\n"), 0o600))
	t.Chdir(dir)

	unsetEnv(t, "SERVER_PORT", "STORE_BACKEND", "SESSION_TTL", "API_TIMEOUT")
	t.Setenv("API_BASE_URL", "https://env.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.ServerPort)
	// the real environment wins over the file
	assert.Equal(t, "https://env.example.com", cfg.APIBaseURL)
}
