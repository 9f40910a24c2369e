package main

import (
	"context"
	"fmt"

	fileledger "github.com/giftflow/giftflow-api/internal/adapters/file/ledgerstore"
	"github.com/giftflow/giftflow-api/internal/adapters/postgres"
	pgledger "github.com/giftflow/giftflow-api/internal/adapters/postgres/ledgerstore"
	sqliteledger "github.com/giftflow/giftflow-api/internal/adapters/sqlite/ledgerstore"
	"github.com/giftflow/giftflow-api/internal/platform/config"
	"github.com/giftflow/giftflow-api/internal/ports/out/ledgerstore"
)

// openStore builds the configured store. The memory backend is rejected:
// a CLI writing to process-local memory would silently do nothing useful.
func openStore(ctx context.Context, cfg config.Config) (ledgerstore.Store, func(), error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		return pgledger.NewStore(pool), pool.Close, nil
	case config.StorageSQLite:
		s, err := sqliteledger.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	case config.StorageFile:
		return fileledger.NewStore(cfg.DataFile), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("STORAGE_BACKEND=%s is not usable from the CLI; pick file, sqlite or postgres", cfg.Storage)
	}
}
