package ledgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/giftflow/giftflow-api/internal/ports/out/ledgerstore"
)

// Store is a Postgres implementation of ledgerstore.Store. The whole
// ledger lives in one jsonb row so Replace stays a single atomic upsert.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Load(ctx context.Context) (ledgerstore.Document, error) {
	if s.pool == nil {
		return ledgerstore.Document{}, errors.New("nil postgres pool")
	}
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM ledger_documents WHERE id = 1`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledgerstore.Document{}, nil
	}
	if err != nil {
		return ledgerstore.Document{}, fmt.Errorf("load ledger document: %w", err)
	}
	var doc ledgerstore.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ledgerstore.Document{}, fmt.Errorf("%w: %v", ledgerstore.ErrCorrupt, err)
	}
	return doc, nil
}

func (s *Store) Replace(ctx context.Context, doc ledgerstore.Document) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode ledger document: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO ledger_documents (id, document, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET
			document = EXCLUDED.document,
			updated_at = now()
	`, raw)
	if err != nil {
		return fmt.Errorf("store ledger document: %w", err)
	}
	return nil
}
