package ledgerview_test

import (
	"context"
	"errors"
	"testing"
	"time"

	memclock "github.com/giftflow/giftflow-api/internal/adapters/memory/clock"
	memledger "github.com/giftflow/giftflow-api/internal/adapters/memory/ledgerstore"
	"github.com/giftflow/giftflow-api/internal/app/apperr"
	"github.com/giftflow/giftflow-api/internal/app/ledgerview"
	"github.com/giftflow/giftflow-api/internal/domain"
	"github.com/giftflow/giftflow-api/internal/ports/out/ledgerstore"
)

var (
	anna = domain.Identity{MemberID: 1}
	eve  = domain.Identity{MemberID: 5}
	root = domain.Identity{MemberID: 4, Admin: true}
	now  = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
)

// seedDocument builds two families with one gift each, plus archived
// purchases from earlier years in family 1.
func seedDocument(t *testing.T) ledgerstore.Document {
	t.Helper()
	doc := ledgerstore.Document{
		Families: []domain.Family{{ID: 1, Name: "Jansen"}, {ID: 2, Name: "Peeters"}},
	}
	for _, m := range []struct {
		id    domain.MemberID
		name  string
		admin bool
	}{
		{1, "anna", false},
		{2, "bram", false},
		{3, "carla", false},
		{4, "root", true},
		{5, "eve", false},
	} {
		doc.Members = append(doc.Members, domain.Member{
			ID: m.id, Username: m.name, DisplayName: m.name,
			PasswordHash: "$2a$10$secret", Admin: m.admin, IsActive: true,
			CreatedAt: now, UpdatedAt: now,
		})
	}
	doc.FamilyLinks = []domain.FamilyLink{
		{ID: 1, FamilyID: 1, MemberID: 1},
		{ID: 2, FamilyID: 1, MemberID: 2},
		{ID: 3, FamilyID: 2, MemberID: 3},
		{ID: 4, FamilyID: 2, MemberID: 5},
	}
	doc.GiftIdeas = []domain.GiftIdea{
		{ID: 1, FamilyID: 1, Title: "Chess set", TargetMemberID: 2, CreatorID: 1, CreationDate: now},
		{ID: 2, FamilyID: 2, Title: "Scarf", TargetMemberID: 5, CreatorID: 3, CreationDate: now},
	}
	doc.PurchasedGifts = []domain.PurchasedGift{
		{ID: 1, FamilyID: 1, Name: "Lego", TotalPrice: 60, Store: "Bol",
			PurchaseDate: now, PayerID: 1, TargetMemberID: 2,
			ReimbursementMemberIDs: []domain.MemberID{1}},
		{ID: 2, FamilyID: 2, Name: "Mug", TotalPrice: 12, Store: "Hema",
			PurchaseDate: now, PayerID: 3, TargetMemberID: 5,
			ReimbursementMemberIDs: []domain.MemberID{3}},
		{ID: 3, FamilyID: 1, Name: "Puzzle", TotalPrice: 25, Store: "Bol",
			PurchaseDate: time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC),
			PayerID: 2, TargetMemberID: 1,
			ReimbursementMemberIDs: []domain.MemberID{2}},
		{ID: 4, FamilyID: 1, Name: "Plant", TotalPrice: 18, Store: "Intratuin",
			PurchaseDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			PayerID: 1, TargetMemberID: 2,
			ReimbursementMemberIDs: []domain.MemberID{1}},
		{ID: 5, FamilyID: 1, Name: "Candles", TotalPrice: 9, Store: "Hema",
			PurchaseDate: time.Date(2023, 12, 5, 0, 0, 0, 0, time.UTC),
			PayerID: 2, TargetMemberID: 1,
			ReimbursementMemberIDs: []domain.MemberID{2}},
	}
	doc.ReimbursementStatus = []domain.ReimbursementStatus{
		{ID: 1, GiftID: 1, MemberID: 1, Status: domain.StatusFullyPaid, AmountPaid: 60},
		{ID: 2, GiftID: 2, MemberID: 3, Status: domain.StatusFullyPaid, AmountPaid: 12},
	}
	return doc
}

func newService(t *testing.T, doc ledgerstore.Document) *ledgerview.Service {
	t.Helper()
	handle := ledgerstore.NewHandle(memledger.NewStoreWithDocument(doc))
	return ledgerview.NewService(handle, memclock.NewManualClock(now))
}

func TestVisibleLedgerScoping(t *testing.T) {
	t.Parallel()
	svc := newService(t, seedDocument(t))

	got, err := svc.VisibleLedger(context.Background(), anna, 1)
	if err != nil {
		t.Fatalf("VisibleLedger: %v", err)
	}
	if got.Family.Name != "Jansen" {
		t.Fatalf("family = %+v", got.Family)
	}
	if len(got.Members) != 2 {
		t.Fatalf("members = %+v", got.Members)
	}
	for _, m := range got.Members {
		if m.PasswordHash != "" {
			t.Fatalf("password hash leaked for %s", m.Username)
		}
	}
	if len(got.GiftIdeas) != 1 || got.GiftIdeas[0].Title != "Chess set" {
		t.Fatalf("ideas = %+v", got.GiftIdeas)
	}
	if len(got.PurchasedGifts) != 4 {
		t.Fatalf("gifts = %+v", got.PurchasedGifts)
	}
	// Only statuses whose gift belongs to the family are visible.
	if len(got.ReimbursementStatus) != 1 || got.ReimbursementStatus[0].GiftID != 1 {
		t.Fatalf("statuses = %+v", got.ReimbursementStatus)
	}
}

func TestVisibleLedgerAccess(t *testing.T) {
	t.Parallel()
	svc := newService(t, seedDocument(t))
	ctx := context.Background()

	_, err := svc.VisibleLedger(ctx, anna, 2)
	assertAppError(t, err, 403, "FORBIDDEN")

	_, err = svc.VisibleLedger(ctx, anna, 9)
	assertAppError(t, err, 404, "FAMILY_NOT_FOUND")

	// Admins read any family without a link.
	if _, err := svc.VisibleLedger(ctx, root, 2); err != nil {
		t.Fatalf("admin VisibleLedger: %v", err)
	}

	if _, err := svc.VisibleLedger(ctx, eve, 2); err != nil {
		t.Fatalf("linked member VisibleLedger: %v", err)
	}
}

func TestArchives(t *testing.T) {
	t.Parallel()
	svc := newService(t, seedDocument(t))

	got, err := svc.Archives(context.Background(), anna, 1)
	if err != nil {
		t.Fatalf("Archives: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("archives = %+v", got)
	}
	// Newest year first; gifts within a year oldest first.
	if got[0].Year != 2024 || got[1].Year != 2023 {
		t.Fatalf("years = %d, %d", got[0].Year, got[1].Year)
	}
	if len(got[0].Purchases) != 2 || got[0].Purchases[0].Name != "Plant" || got[0].Purchases[1].Name != "Puzzle" {
		t.Fatalf("2024 purchases = %+v", got[0].Purchases)
	}
	if len(got[1].Purchases) != 1 || got[1].Purchases[0].Name != "Candles" {
		t.Fatalf("2023 purchases = %+v", got[1].Purchases)
	}

	// Current-year purchases never appear in the archives.
	for _, year := range got {
		for _, g := range year.Purchases {
			if g.PurchaseDate.Year() >= now.Year() {
				t.Fatalf("current-year gift archived: %+v", g)
			}
		}
	}
}

func TestArchivesAccess(t *testing.T) {
	t.Parallel()
	svc := newService(t, seedDocument(t))

	_, err := svc.Archives(context.Background(), eve, 1)
	assertAppError(t, err, 403, "FORBIDDEN")
}

func assertAppError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, want *apperr.Error", err)
	}
	if ae.Status != status || ae.Code != code {
		t.Fatalf("err = %d %s, want %d %s", ae.Status, ae.Code, status, code)
	}
}
