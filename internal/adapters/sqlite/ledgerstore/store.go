// Package ledgerstore stores the ledger document as a single row in a
// SQLite database. It is the zero-ops durable option for single-host
// deployments where running Postgres is not worth it.
package ledgerstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/giftflow/giftflow-api/internal/ports/out/ledgerstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS ledger_documents (
    id       INTEGER PRIMARY KEY CHECK (id = 1),
    document TEXT NOT NULL
);
`

// Store is a SQLite-backed implementation of ledgerstore.Store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Load(ctx context.Context) (ledgerstore.Document, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM ledger_documents WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
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
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode ledger document: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ledger_documents (id, document) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET document = excluded.document`, raw)
	if err != nil {
		return fmt.Errorf("store ledger document: %w", err)
	}
	return nil
}
