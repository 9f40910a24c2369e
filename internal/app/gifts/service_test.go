package gifts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	memclock "github.com/giftflow/giftflow-api/internal/adapters/memory/clock"
	memledger "github.com/giftflow/giftflow-api/internal/adapters/memory/ledgerstore"
	"github.com/giftflow/giftflow-api/internal/app/apperr"
	"github.com/giftflow/giftflow-api/internal/app/gifts"
	"github.com/giftflow/giftflow-api/internal/domain"
	"github.com/giftflow/giftflow-api/internal/ports/out/ledgerstore"
)

var (
	anna  = domain.Identity{MemberID: 1}
	bram  = domain.Identity{MemberID: 2}
	eve   = domain.Identity{MemberID: 5}
	root  = domain.Identity{MemberID: 4, Admin: true}
	epoch = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
)

// seedDocument builds a family of three linked members plus an unlinked
// admin and an unlinked regular member.
func seedDocument(t *testing.T) ledgerstore.Document {
	t.Helper()
	doc := ledgerstore.Document{
		Families: []domain.Family{{ID: 1, Name: "Jansen"}},
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
			ID:          m.id,
			Username:    m.name,
			DisplayName: m.name,
			Admin:       m.admin,
			IsActive:    true,
			CreatedAt:   epoch,
			UpdatedAt:   epoch,
		})
	}
	for i, id := range []domain.MemberID{1, 2, 3} {
		doc.FamilyLinks = append(doc.FamilyLinks, domain.FamilyLink{
			ID: domain.LinkID(i + 1), FamilyID: 1, MemberID: id,
		})
	}
	return doc
}

func newService(t *testing.T, doc ledgerstore.Document) (*gifts.Service, *ledgerstore.Handle) {
	t.Helper()
	handle := ledgerstore.NewHandle(memledger.NewStoreWithDocument(doc))
	return gifts.NewService(handle, memclock.NewManualClock(epoch)), handle
}

func loadDoc(t *testing.T, handle *ledgerstore.Handle) ledgerstore.Document {
	t.Helper()
	var doc ledgerstore.Document
	err := handle.View(context.Background(), func(d *ledgerstore.Document) error {
		doc = *d
		return nil
	})
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
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

func purchaseInput() gifts.PurchaseInput {
	return gifts.PurchaseInput{
		Name:           "Chess set",
		TotalPrice:     90,
		Store:          "Bol",
		PurchaseDate:   epoch,
		PayerID:        1,
		ParticipantIDs: []domain.MemberID{1, 3},
	}
}

func TestCreateIdea(t *testing.T) {
	t.Parallel()
	svc, handle := newService(t, seedDocument(t))

	price := 45.0
	idea, err := svc.CreateIdea(context.Background(), anna, gifts.CreateIdeaInput{
		FamilyID:       1,
		Title:          "  Chess set ",
		EstimatedPrice: &price,
		TargetMemberID: 2,
	})
	if err != nil {
		t.Fatalf("CreateIdea: %v", err)
	}
	if idea.ID != 1 || idea.Title != "Chess set" || idea.CreatorID != 1 {
		t.Fatalf("idea = %+v", idea)
	}
	if idea.EstimatedPrice == nil || *idea.EstimatedPrice != 45 {
		t.Fatalf("estimatedPrice = %v", idea.EstimatedPrice)
	}
	if !idea.CreationDate.Equal(epoch) {
		t.Fatalf("creationDate = %v", idea.CreationDate)
	}

	doc := loadDoc(t, handle)
	if len(doc.GiftIdeas) != 1 {
		t.Fatalf("ideas = %+v", doc.GiftIdeas)
	}
}

func TestCreateIdeaValidation(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t, seedDocument(t))
	ctx := context.Background()

	_, err := svc.CreateIdea(ctx, anna, gifts.CreateIdeaInput{FamilyID: 1, Title: "   ", TargetMemberID: 2})
	assertAppError(t, err, 422, "VALIDATION_ERROR")

	neg := -1.0
	_, err = svc.CreateIdea(ctx, anna, gifts.CreateIdeaInput{FamilyID: 1, Title: "Book", EstimatedPrice: &neg, TargetMemberID: 2})
	assertAppError(t, err, 422, "VALIDATION_ERROR")

	// Target not linked to the family.
	_, err = svc.CreateIdea(ctx, anna, gifts.CreateIdeaInput{FamilyID: 1, Title: "Book", TargetMemberID: 5})
	assertAppError(t, err, 422, "VALIDATION_ERROR")

	_, err = svc.CreateIdea(ctx, anna, gifts.CreateIdeaInput{FamilyID: 9, Title: "Book", TargetMemberID: 2})
	assertAppError(t, err, 404, "FAMILY_NOT_FOUND")

	// Unlinked caller cannot write into the family; admins can.
	_, err = svc.CreateIdea(ctx, eve, gifts.CreateIdeaInput{FamilyID: 1, Title: "Book", TargetMemberID: 2})
	assertAppError(t, err, 403, "FORBIDDEN")

	if _, err := svc.CreateIdea(ctx, root, gifts.CreateIdeaInput{FamilyID: 1, Title: "Book", TargetMemberID: 2}); err != nil {
		t.Fatalf("admin CreateIdea: %v", err)
	}
}

func TestEditIdeaPrice(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t, seedDocument(t))
	ctx := context.Background()

	idea, err := svc.CreateIdea(ctx, anna, gifts.CreateIdeaInput{FamilyID: 1, Title: "Book", TargetMemberID: 2})
	if err != nil {
		t.Fatalf("CreateIdea: %v", err)
	}

	price := 20.0
	updated, err := svc.EditIdea(ctx, anna, idea.ID, &price)
	if err != nil {
		t.Fatalf("EditIdea: %v", err)
	}
	if updated.EstimatedPrice == nil || *updated.EstimatedPrice != 20 {
		t.Fatalf("estimatedPrice = %v", updated.EstimatedPrice)
	}

	// nil clears the estimate.
	updated, err = svc.EditIdea(ctx, anna, idea.ID, nil)
	if err != nil {
		t.Fatalf("EditIdea: %v", err)
	}
	if updated.EstimatedPrice != nil {
		t.Fatalf("estimatedPrice = %v, want nil", *updated.EstimatedPrice)
	}

	_, err = svc.EditIdea(ctx, anna, 99, &price)
	assertAppError(t, err, 404, "IDEA_NOT_FOUND")
}

func TestDeleteIdea(t *testing.T) {
	t.Parallel()
	svc, handle := newService(t, seedDocument(t))
	ctx := context.Background()

	idea, err := svc.CreateIdea(ctx, anna, gifts.CreateIdeaInput{FamilyID: 1, Title: "Book", TargetMemberID: 2})
	if err != nil {
		t.Fatalf("CreateIdea: %v", err)
	}
	if err := svc.DeleteIdea(ctx, anna, idea.ID); err != nil {
		t.Fatalf("DeleteIdea: %v", err)
	}
	if doc := loadDoc(t, handle); len(doc.GiftIdeas) != 0 {
		t.Fatalf("ideas = %+v", doc.GiftIdeas)
	}
	assertAppError(t, svc.DeleteIdea(ctx, anna, idea.ID), 404, "IDEA_NOT_FOUND")
}

func TestCreatePurchaseSplitsPrice(t *testing.T) {
	t.Parallel()
	svc, handle := newService(t, seedDocument(t))

	g, err := svc.CreatePurchase(context.Background(), anna, gifts.CreatePurchaseInput{
		PurchaseInput:  purchaseInput(),
		FamilyID:       1,
		TargetMemberID: 2,
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	if g.ID != 1 || g.TotalPrice != 90 {
		t.Fatalf("gift = %+v", g)
	}

	doc := loadDoc(t, handle)
	if len(doc.ReimbursementStatus) != 2 {
		t.Fatalf("statuses = %+v", doc.ReimbursementStatus)
	}
	byMember := make(map[domain.MemberID]domain.ReimbursementStatus)
	for _, s := range doc.ReimbursementStatus {
		if s.GiftID != g.ID {
			t.Fatalf("status %+v belongs to wrong gift", s)
		}
		byMember[s.MemberID] = s
	}
	// The payer starts self-settled at exactly one share.
	if s := byMember[1]; s.Status != domain.StatusFullyPaid || s.AmountPaid != 45 {
		t.Fatalf("payer status = %+v", s)
	}
	if s := byMember[3]; s.Status != domain.StatusUnpaid || s.AmountPaid != 0 {
		t.Fatalf("participant status = %+v", s)
	}
}

func TestCreatePurchaseConsumesIdea(t *testing.T) {
	t.Parallel()
	svc, handle := newService(t, seedDocument(t))
	ctx := context.Background()

	idea, err := svc.CreateIdea(ctx, anna, gifts.CreateIdeaInput{FamilyID: 1, Title: "Chess set", TargetMemberID: 2})
	if err != nil {
		t.Fatalf("CreateIdea: %v", err)
	}

	_, err = svc.CreatePurchase(ctx, anna, gifts.CreatePurchaseInput{
		PurchaseInput:  purchaseInput(),
		FamilyID:       1,
		TargetMemberID: 2,
		SourceIdeaID:   &idea.ID,
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	doc := loadDoc(t, handle)
	if len(doc.GiftIdeas) != 0 {
		t.Fatalf("idea survived conversion: %+v", doc.GiftIdeas)
	}
	if len(doc.PurchasedGifts) != 1 {
		t.Fatalf("gifts = %+v", doc.PurchasedGifts)
	}
}

func TestCreatePurchaseMissingSourceIdeaWritesNothing(t *testing.T) {
	t.Parallel()
	svc, handle := newService(t, seedDocument(t))

	missing := domain.IdeaID(42)
	_, err := svc.CreatePurchase(context.Background(), anna, gifts.CreatePurchaseInput{
		PurchaseInput:  purchaseInput(),
		FamilyID:       1,
		TargetMemberID: 2,
		SourceIdeaID:   &missing,
	})
	assertAppError(t, err, 404, "IDEA_NOT_FOUND")

	doc := loadDoc(t, handle)
	if len(doc.PurchasedGifts) != 0 || len(doc.ReimbursementStatus) != 0 {
		t.Fatalf("partial write: gifts=%+v statuses=%+v", doc.PurchasedGifts, doc.ReimbursementStatus)
	}
}

func TestCreatePurchaseValidation(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t, seedDocument(t))
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*gifts.CreatePurchaseInput)
	}{
		{"blank name", func(in *gifts.CreatePurchaseInput) { in.Name = " " }},
		{"blank store", func(in *gifts.CreatePurchaseInput) { in.Store = "" }},
		{"zero price", func(in *gifts.CreatePurchaseInput) { in.TotalPrice = 0 }},
		{"no participants", func(in *gifts.CreatePurchaseInput) { in.ParticipantIDs = nil }},
		{"duplicate participants", func(in *gifts.CreatePurchaseInput) { in.ParticipantIDs = []domain.MemberID{1, 1} }},
		{"target participates", func(in *gifts.CreatePurchaseInput) { in.ParticipantIDs = []domain.MemberID{1, 2} }},
		{"unlinked payer", func(in *gifts.CreatePurchaseInput) { in.PayerID = 5 }},
		{"unlinked participant", func(in *gifts.CreatePurchaseInput) { in.ParticipantIDs = []domain.MemberID{1, 5} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := gifts.CreatePurchaseInput{PurchaseInput: purchaseInput(), FamilyID: 1, TargetMemberID: 2}
			tc.mutate(&in)
			_, err := svc.CreatePurchase(ctx, anna, in)
			assertAppError(t, err, 422, "VALIDATION_ERROR")
		})
	}
}

func TestEditPurchaseRegeneratesStatuses(t *testing.T) {
	t.Parallel()
	svc, handle := newService(t, seedDocument(t))
	ctx := context.Background()

	g, err := svc.CreatePurchase(ctx, anna, gifts.CreatePurchaseInput{
		PurchaseInput:  purchaseInput(),
		FamilyID:       1,
		TargetMemberID: 2,
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	// Simulate payment progress outside the service, then edit: the edit
	// rebuilds every record and the progress is gone.
	err = handle.Update(ctx, func(doc *ledgerstore.Document) error {
		for i := range doc.ReimbursementStatus {
			if doc.ReimbursementStatus[i].MemberID == 3 {
				doc.ReimbursementStatus[i].Status = domain.StatusPartiallyPaid
				doc.ReimbursementStatus[i].AmountPaid = 10
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	in := purchaseInput()
	in.TotalPrice = 60
	in.PayerID = 3
	updated, err := svc.EditPurchase(ctx, anna, g.ID, in)
	if err != nil {
		t.Fatalf("EditPurchase: %v", err)
	}
	if updated.TotalPrice != 60 || updated.PayerID != 3 {
		t.Fatalf("updated = %+v", updated)
	}

	doc := loadDoc(t, handle)
	if len(doc.ReimbursementStatus) != 2 {
		t.Fatalf("statuses = %+v", doc.ReimbursementStatus)
	}
	for _, s := range doc.ReimbursementStatus {
		switch s.MemberID {
		case 3:
			if s.Status != domain.StatusFullyPaid || s.AmountPaid != 30 {
				t.Fatalf("new payer status = %+v", s)
			}
		case 1:
			if s.Status != domain.StatusUnpaid || s.AmountPaid != 0 {
				t.Fatalf("reset status = %+v", s)
			}
		default:
			t.Fatalf("unexpected status %+v", s)
		}
	}
}

func TestDeletePurchaseDropsStatuses(t *testing.T) {
	t.Parallel()
	svc, handle := newService(t, seedDocument(t))
	ctx := context.Background()

	g, err := svc.CreatePurchase(ctx, anna, gifts.CreatePurchaseInput{
		PurchaseInput:  purchaseInput(),
		FamilyID:       1,
		TargetMemberID: 2,
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	if err := svc.DeletePurchase(ctx, anna, g.ID); err != nil {
		t.Fatalf("DeletePurchase: %v", err)
	}

	doc := loadDoc(t, handle)
	if len(doc.PurchasedGifts) != 0 || len(doc.ReimbursementStatus) != 0 {
		t.Fatalf("leftovers: gifts=%+v statuses=%+v", doc.PurchasedGifts, doc.ReimbursementStatus)
	}
	assertAppError(t, svc.DeletePurchase(ctx, anna, g.ID), 404, "GIFT_NOT_FOUND")
}

func TestRevertPurchaseToIdea(t *testing.T) {
	t.Parallel()
	svc, handle := newService(t, seedDocument(t))
	ctx := context.Background()

	g, err := svc.CreatePurchase(ctx, anna, gifts.CreatePurchaseInput{
		PurchaseInput:  purchaseInput(),
		FamilyID:       1,
		TargetMemberID: 2,
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	idea, err := svc.RevertPurchaseToIdea(ctx, anna, g.ID)
	if err != nil {
		t.Fatalf("RevertPurchaseToIdea: %v", err)
	}
	if idea.Title != g.Name || idea.CreatorID != g.PayerID || idea.TargetMemberID != g.TargetMemberID {
		t.Fatalf("idea = %+v", idea)
	}
	if idea.EstimatedPrice == nil || *idea.EstimatedPrice != g.TotalPrice {
		t.Fatalf("estimatedPrice = %v", idea.EstimatedPrice)
	}

	doc := loadDoc(t, handle)
	if len(doc.PurchasedGifts) != 0 || len(doc.ReimbursementStatus) != 0 {
		t.Fatalf("purchase survived revert: gifts=%+v statuses=%+v", doc.PurchasedGifts, doc.ReimbursementStatus)
	}
	if len(doc.GiftIdeas) != 1 {
		t.Fatalf("ideas = %+v", doc.GiftIdeas)
	}
}

func TestIdeaIDsContinueFromMax(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t, seedDocument(t))
	ctx := context.Background()

	first, err := svc.CreateIdea(ctx, anna, gifts.CreateIdeaInput{FamilyID: 1, Title: "One", TargetMemberID: 2})
	if err != nil {
		t.Fatalf("CreateIdea: %v", err)
	}
	second, err := svc.CreateIdea(ctx, anna, gifts.CreateIdeaInput{FamilyID: 1, Title: "Two", TargetMemberID: 2})
	if err != nil {
		t.Fatalf("CreateIdea: %v", err)
	}
	if err := svc.DeleteIdea(ctx, anna, first.ID); err != nil {
		t.Fatalf("DeleteIdea: %v", err)
	}

	// Ids are allocated as max existing + 1, so the freed low id is reused
	// only once nothing above it remains.
	third, err := svc.CreateIdea(ctx, anna, gifts.CreateIdeaInput{FamilyID: 1, Title: "Three", TargetMemberID: 2})
	if err != nil {
		t.Fatalf("CreateIdea: %v", err)
	}
	if second.ID != 2 || third.ID != 3 {
		t.Fatalf("ids = %d, %d", second.ID, third.ID)
	}
}

func TestPurchaseAccessControl(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t, seedDocument(t))
	ctx := context.Background()

	g, err := svc.CreatePurchase(ctx, anna, gifts.CreatePurchaseInput{
		PurchaseInput:  purchaseInput(),
		FamilyID:       1,
		TargetMemberID: 2,
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	_, err = svc.EditPurchase(ctx, eve, g.ID, purchaseInput())
	assertAppError(t, err, 403, "FORBIDDEN")
	assertAppError(t, svc.DeletePurchase(ctx, eve, g.ID), 403, "FORBIDDEN")
	_, err = svc.RevertPurchaseToIdea(ctx, eve, g.ID)
	assertAppError(t, err, 403, "FORBIDDEN")

	// Linked members other than the payer may still manage the gift.
	if _, err := svc.EditPurchase(ctx, bram, g.ID, purchaseInput()); err != nil {
		t.Fatalf("EditPurchase by family member: %v", err)
	}
}
