// Package config loads deployment configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
)

type AuthMode string

const (
	AuthModeBasic AuthMode = "basic"
	AuthModeDev   AuthMode = "dev"
)

type StorageBackend string

const (
	StorageMemory   StorageBackend = "memory"
	StorageFile     StorageBackend = "file"
	StorageSQLite   StorageBackend = "sqlite"
	StoragePostgres StorageBackend = "postgres"
)

// Config is the full runtime configuration of the API server.
type Config struct {
	Port     string
	LogLevel string

	AuthMode AuthMode
	// DevMemberID is the fallback identity for AuthModeDev when the request
	// carries no X-Debug-Member header. Zero means the header is required.
	DevMemberID int64

	Storage    StorageBackend
	DataFile   string
	SQLitePath string
	// DatabaseURL is required for the postgres backend.
	DatabaseURL string
}

// LoadFromEnv reads configuration with predictable defaults: a memory-backed
// store and Basic auth on port 8080.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		Port:       envOr("PORT", "8080"),
		LogLevel:   envOr("LOG_LEVEL", "info"),
		AuthMode:   AuthMode(envOr("AUTH_MODE", string(AuthModeBasic))),
		Storage:    StorageBackend(envOr("STORAGE_BACKEND", string(StorageMemory))),
		DataFile:   envOr("DATA_FILE", "data/database.json"),
		SQLitePath: envOr("SQLITE_PATH", "data/giftflow.db"),
	}

	switch cfg.AuthMode {
	case AuthModeBasic, AuthModeDev:
	default:
		return Config{}, fmt.Errorf("AUTH_MODE must be %q or %q, got %q", AuthModeBasic, AuthModeDev, cfg.AuthMode)
	}

	if v := os.Getenv("DEV_MEMBER_ID"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("DEV_MEMBER_ID must be a positive integer, got %q", v)
		}
		cfg.DevMemberID = n
	}

	switch cfg.Storage {
	case StorageMemory, StorageFile, StorageSQLite:
	case StoragePostgres:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	default:
		return Config{}, fmt.Errorf("STORAGE_BACKEND must be one of memory, file, sqlite, postgres; got %q", cfg.Storage)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
