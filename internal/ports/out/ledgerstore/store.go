package ledgerstore

import (
	"context"
	"sync"

	"github.com/giftflow/giftflow-api/internal/domain"
)

// Document is the persistence shape of one logical ledger: every collection
// the application owns, stored and replaced as a single unit. It is not an
// HTTP DTO, but its field names match the persisted JSON layout.
type Document struct {
	Families            []domain.Family              `json:"families"`
	Members             []domain.Member              `json:"members"`
	GiftIdeas           []domain.GiftIdea            `json:"giftIdeas"`
	PurchasedGifts      []domain.PurchasedGift       `json:"purchasedGifts"`
	ReimbursementStatus []domain.ReimbursementStatus `json:"reimbursementStatus"`
	FamilyLinks         []domain.FamilyLink          `json:"userFamilyLinks"`
}

// Store persists a ledger document. Load returns the current state in full;
// Replace atomically substitutes the whole document. There are no
// finer-grained operations: read-modify-write happens above this port.
type Store interface {
	Load(ctx context.Context) (Document, error)
	Replace(ctx context.Context, doc Document) error
}

// Handle wraps a Store with a write mutex so that concurrent mutating
// operations on the same store cannot interleave their load/replace pairs.
// Reads go straight through: Load is atomic on every adapter.
type Handle struct {
	mu    sync.Mutex
	store Store
}

func NewHandle(store Store) *Handle {
	return &Handle{store: store}
}

// View loads the current document and passes it to fn. Mutations made by fn
// are discarded.
func (h *Handle) View(ctx context.Context, fn func(doc *Document) error) error {
	doc, err := h.store.Load(ctx)
	if err != nil {
		return err
	}
	return fn(&doc)
}

// Update loads the current document, applies fn, and persists the result as
// one atomic replace. If fn returns an error nothing is written.
func (h *Handle) Update(ctx context.Context, fn func(doc *Document) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	doc, err := h.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	return h.store.Replace(ctx, doc)
}
