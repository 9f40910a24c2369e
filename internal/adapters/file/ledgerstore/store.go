// Package ledgerstore persists the ledger document as a single JSON file,
// matching the original deployment layout (one database.json per store,
// kept on a mounted volume).
package ledgerstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/giftflow/giftflow-api/internal/ports/out/ledgerstore"
)

// Store is a file-backed implementation of ledgerstore.Store.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads and decodes the document. A missing file is an empty ledger,
// so first-run deployments need no seed step.
func (s *Store) Load(ctx context.Context) (ledgerstore.Document, error) {
	_ = ctx
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ledgerstore.Document{}, nil
		}
		return ledgerstore.Document{}, fmt.Errorf("read ledger file: %w", err)
	}
	var doc ledgerstore.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ledgerstore.Document{}, fmt.Errorf("%w: %v", ledgerstore.ErrCorrupt, err)
	}
	return doc, nil
}

// Replace writes the full document to a uniquely named temp file in the
// same directory and renames it over the target, so readers always observe
// either the old document or the new one, never a torn write.
func (s *Store) Replace(ctx context.Context, doc ledgerstore.Document) error {
	_ = ctx
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(s.path), uuid.NewString()))
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write ledger temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}
