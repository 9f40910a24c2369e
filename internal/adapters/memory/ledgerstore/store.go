package ledgerstore

import (
	"context"
	"sync"

	"github.com/giftflow/giftflow-api/internal/ports/out/ledgerstore"
)

// Store is an in-memory implementation of ledgerstore.Store.
// It is safe for concurrent use; Load and Replace exchange deep copies so
// callers can never alias the held document.
type Store struct {
	mu  sync.RWMutex
	doc ledgerstore.Document
}

func NewStore() *Store {
	return &Store{}
}

// NewStoreWithDocument seeds the store, primarily for tests.
func NewStoreWithDocument(doc ledgerstore.Document) *Store {
	return &Store{doc: doc.Clone()}
}

func (s *Store) Load(ctx context.Context) (ledgerstore.Document, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone(), nil
}

func (s *Store) Replace(ctx context.Context, doc ledgerstore.Document) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc.Clone()
	return nil
}
