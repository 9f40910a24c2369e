// Package contracttest defines behavior contracts that every
// ledgerstore.Store implementation must satisfy. Each adapter wires its
// own factory into RunLedgerStore from a package-level test.
package contracttest

import (
	"context"
	"testing"
	"time"

	"github.com/giftflow/giftflow-api/internal/domain"
	"github.com/giftflow/giftflow-api/internal/ports/out/ledgerstore"
)

type CleanupFunc = func()

type LedgerStoreFactory func(t *testing.T) (ledgerstore.Store, CleanupFunc)

func RunLedgerStore(t *testing.T, newStore LedgerStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	// A fresh store holds an empty ledger, not an error.
	doc, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	if len(doc.Members) != 0 || len(doc.PurchasedGifts) != 0 {
		t.Fatalf("expected empty document, got %+v", doc)
	}

	price := 25.0
	now := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	seeded := ledgerstore.Document{
		Families: []domain.Family{{ID: 1, Name: "Jansen"}},
		Members: []domain.Member{
			{ID: 1, Username: "anna", DisplayName: "Anna", Email: "anna@example.com", IsActive: true, CreatedAt: now, UpdatedAt: now},
			{ID: 2, Username: "bram", DisplayName: "Bram", Email: "bram@example.com", IsActive: true, CreatedAt: now, UpdatedAt: now},
		},
		GiftIdeas: []domain.GiftIdea{
			{ID: 1, FamilyID: 1, Title: "Chess set", EstimatedPrice: &price, TargetMemberID: 2, CreatorID: 1, CreationDate: now},
		},
		PurchasedGifts: []domain.PurchasedGift{
			{ID: 1, FamilyID: 1, Name: "Board game", TotalPrice: 60, Store: "GameShop", PurchaseDate: now, PayerID: 1, TargetMemberID: 2, ReimbursementMemberIDs: []domain.MemberID{1, 2}},
		},
		ReimbursementStatus: []domain.ReimbursementStatus{
			{ID: 1, GiftID: 1, MemberID: 1, Status: domain.StatusFullyPaid, AmountPaid: 30},
			{ID: 2, GiftID: 1, MemberID: 2, Status: domain.StatusUnpaid, AmountPaid: 0},
		},
		FamilyLinks: []domain.FamilyLink{
			{ID: 1, FamilyID: 1, MemberID: 1},
			{ID: 2, FamilyID: 1, MemberID: 2},
		},
	}
	if err := store.Replace(ctx, seeded); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load after Replace: %v", err)
	}
	if len(got.Members) != 2 || len(got.GiftIdeas) != 1 || len(got.ReimbursementStatus) != 2 {
		t.Fatalf("unexpected document after Replace: %+v", got)
	}
	if got.GiftIdeas[0].EstimatedPrice == nil || *got.GiftIdeas[0].EstimatedPrice != price {
		t.Fatalf("estimated price not round-tripped: %+v", got.GiftIdeas[0])
	}
	if !got.PurchasedGifts[0].PurchaseDate.Equal(now) {
		t.Fatalf("purchase date not round-tripped: %v", got.PurchasedGifts[0].PurchaseDate)
	}

	// Replace swaps the whole document; removed records must not linger.
	trimmed := got
	trimmed.GiftIdeas = nil
	trimmed.ReimbursementStatus = trimmed.ReimbursementStatus[:1]
	if err := store.Replace(ctx, trimmed); err != nil {
		t.Fatalf("Replace trimmed: %v", err)
	}
	got, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load after trim: %v", err)
	}
	if len(got.GiftIdeas) != 0 || len(got.ReimbursementStatus) != 1 {
		t.Fatalf("expected trimmed document, got %+v", got)
	}

	// Loaded documents are snapshots: mutating one must not leak into the store.
	got.Members[0].DisplayName = "Mutated"
	again, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load snapshot: %v", err)
	}
	if again.Members[0].DisplayName != "Anna" {
		t.Fatalf("loaded document aliases store state: %+v", again.Members[0])
	}
}
