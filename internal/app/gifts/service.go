package gifts

import (
	"context"

	"github.com/giftflow/giftflow-api/internal/app/apperr"
	"github.com/giftflow/giftflow-api/internal/domain"
	clockport "github.com/giftflow/giftflow-api/internal/ports/out/clock"
	"github.com/giftflow/giftflow-api/internal/ports/out/ledgerstore"
)

// Service owns the idea <-> purchase lifecycle. Every mutation stages the
// full new document before committing, so a validation failure never leaves
// a partial write behind.
type Service struct {
	ledger *ledgerstore.Handle
	clk    clockport.Clock
}

func NewService(ledger *ledgerstore.Handle, clk clockport.Clock) *Service {
	return &Service{ledger: ledger, clk: clk}
}

func (s *Service) CreateIdea(ctx context.Context, caller domain.Identity, in CreateIdeaInput) (domain.GiftIdea, error) {
	title := domain.NormalizeText(in.Title)
	if title == "" {
		return domain.GiftIdea{}, apperr.Invalid("invalid title", map[string]any{"title": "must be non-empty"})
	}
	if in.EstimatedPrice != nil && *in.EstimatedPrice < 0 {
		return domain.GiftIdea{}, apperr.Invalid("invalid estimatedPrice", map[string]any{"estimatedPrice": "must be >= 0"})
	}

	var created domain.GiftIdea
	err := s.ledger.Update(ctx, func(doc *ledgerstore.Document) error {
		if err := requireFamily(doc, caller, in.FamilyID); err != nil {
			return err
		}
		if err := requireLinkedMember(doc, in.FamilyID, in.TargetMemberID, "targetMemberId"); err != nil {
			return err
		}

		created = domain.GiftIdea{
			ID:             doc.NextIdeaID(),
			FamilyID:       in.FamilyID,
			Title:          title,
			EstimatedPrice: clonePricePtr(in.EstimatedPrice),
			TargetMemberID: in.TargetMemberID,
			CreatorID:      caller.MemberID,
			CreationDate:   s.clk.Now(),
		}
		doc.GiftIdeas = append(doc.GiftIdeas, created)
		return nil
	})
	if err != nil {
		return domain.GiftIdea{}, err
	}
	return created, nil
}

// EditIdea replaces the idea's estimated price; nil clears it. The price is
// the only idea field that can change after creation.
func (s *Service) EditIdea(ctx context.Context, caller domain.Identity, id domain.IdeaID, estimatedPrice *float64) (domain.GiftIdea, error) {
	if estimatedPrice != nil && *estimatedPrice < 0 {
		return domain.GiftIdea{}, apperr.Invalid("invalid estimatedPrice", map[string]any{"estimatedPrice": "must be >= 0"})
	}

	var updated domain.GiftIdea
	err := s.ledger.Update(ctx, func(doc *ledgerstore.Document) error {
		i := doc.IdeaByID(id)
		if i < 0 {
			return apperr.NotFound("IDEA_NOT_FOUND", "gift idea not found")
		}
		if err := requireFamily(doc, caller, doc.GiftIdeas[i].FamilyID); err != nil {
			return err
		}
		doc.GiftIdeas[i].EstimatedPrice = clonePricePtr(estimatedPrice)
		updated = doc.GiftIdeas[i]
		return nil
	})
	if err != nil {
		return domain.GiftIdea{}, err
	}
	return updated, nil
}

func (s *Service) DeleteIdea(ctx context.Context, caller domain.Identity, id domain.IdeaID) error {
	return s.ledger.Update(ctx, func(doc *ledgerstore.Document) error {
		i := doc.IdeaByID(id)
		if i < 0 {
			return apperr.NotFound("IDEA_NOT_FOUND", "gift idea not found")
		}
		if err := requireFamily(doc, caller, doc.GiftIdeas[i].FamilyID); err != nil {
			return err
		}
		doc.GiftIdeas = append(doc.GiftIdeas[:i], doc.GiftIdeas[i+1:]...)
		return nil
	})
}

// CreatePurchase appends a purchased gift and its initial reimbursement
// records. When SourceIdeaID is set the named idea is consumed: the new
// purchase and the idea deletion commit together, or neither does.
func (s *Service) CreatePurchase(ctx context.Context, caller domain.Identity, in CreatePurchaseInput) (domain.PurchasedGift, error) {
	name, store, err := validatePurchaseFields(in.PurchaseInput)
	if err != nil {
		return domain.PurchasedGift{}, err
	}

	var created domain.PurchasedGift
	uerr := s.ledger.Update(ctx, func(doc *ledgerstore.Document) error {
		if err := requireFamily(doc, caller, in.FamilyID); err != nil {
			return err
		}
		if err := validatePurchaseMembers(doc, in.FamilyID, in.TargetMemberID, in.PurchaseInput); err != nil {
			return err
		}
		if in.SourceIdeaID != nil {
			i := doc.IdeaByID(*in.SourceIdeaID)
			if i < 0 {
				return apperr.NotFound("IDEA_NOT_FOUND", "source gift idea not found")
			}
			if doc.GiftIdeas[i].FamilyID != in.FamilyID {
				return apperr.Invalid("invalid sourceIdeaId", map[string]any{"sourceIdeaId": "idea belongs to another family"})
			}
			doc.GiftIdeas = append(doc.GiftIdeas[:i], doc.GiftIdeas[i+1:]...)
		}

		created = domain.PurchasedGift{
			ID:                     doc.NextGiftID(),
			FamilyID:               in.FamilyID,
			Name:                   name,
			TotalPrice:             in.TotalPrice,
			Store:                  store,
			PurchaseDate:           in.PurchaseDate,
			PayerID:                in.PayerID,
			TargetMemberID:         in.TargetMemberID,
			ReimbursementMemberIDs: append([]domain.MemberID(nil), in.ParticipantIDs...),
		}
		doc.PurchasedGifts = append(doc.PurchasedGifts, created)
		return regenerateStatuses(doc, created)
	})
	if uerr != nil {
		return domain.PurchasedGift{}, uerr
	}
	return created, nil
}

// EditPurchase replaces the gift's mutable fields wholesale and regenerates
// every reimbursement record from scratch. Partial-payment history for the
// gift is lost on edit; tests pin this behavior so a future change to it is
// deliberate.
func (s *Service) EditPurchase(ctx context.Context, caller domain.Identity, id domain.GiftID, in PurchaseInput) (domain.PurchasedGift, error) {
	name, store, err := validatePurchaseFields(in)
	if err != nil {
		return domain.PurchasedGift{}, err
	}

	var updated domain.PurchasedGift
	uerr := s.ledger.Update(ctx, func(doc *ledgerstore.Document) error {
		i := doc.GiftByID(id)
		if i < 0 {
			return apperr.NotFound("GIFT_NOT_FOUND", "purchased gift not found")
		}
		g := doc.PurchasedGifts[i]
		if err := requireFamily(doc, caller, g.FamilyID); err != nil {
			return err
		}
		if err := validatePurchaseMembers(doc, g.FamilyID, g.TargetMemberID, in); err != nil {
			return err
		}

		g.Name = name
		g.TotalPrice = in.TotalPrice
		g.Store = store
		g.PurchaseDate = in.PurchaseDate
		g.PayerID = in.PayerID
		g.ReimbursementMemberIDs = append([]domain.MemberID(nil), in.ParticipantIDs...)

		doc.PurchasedGifts[i] = g
		updated = g
		return regenerateStatuses(doc, g)
	})
	if uerr != nil {
		return domain.PurchasedGift{}, uerr
	}
	return updated, nil
}

func (s *Service) DeletePurchase(ctx context.Context, caller domain.Identity, id domain.GiftID) error {
	return s.ledger.Update(ctx, func(doc *ledgerstore.Document) error {
		i := doc.GiftByID(id)
		if i < 0 {
			return apperr.NotFound("GIFT_NOT_FOUND", "purchased gift not found")
		}
		if err := requireFamily(doc, caller, doc.PurchasedGifts[i].FamilyID); err != nil {
			return err
		}
		dropStatuses(doc, id)
		doc.PurchasedGifts = append(doc.PurchasedGifts[:i], doc.PurchasedGifts[i+1:]...)
		return nil
	})
}

// RevertPurchaseToIdea turns a purchase back into an idea. The idea carries
// over the name as title, the total price as estimate, and the payer as
// creator; all reimbursement detail is destroyed with the purchase.
func (s *Service) RevertPurchaseToIdea(ctx context.Context, caller domain.Identity, id domain.GiftID) (domain.GiftIdea, error) {
	var idea domain.GiftIdea
	err := s.ledger.Update(ctx, func(doc *ledgerstore.Document) error {
		i := doc.GiftByID(id)
		if i < 0 {
			return apperr.NotFound("GIFT_NOT_FOUND", "purchased gift not found")
		}
		g := doc.PurchasedGifts[i]
		if err := requireFamily(doc, caller, g.FamilyID); err != nil {
			return err
		}

		price := g.TotalPrice
		idea = domain.GiftIdea{
			ID:             doc.NextIdeaID(),
			FamilyID:       g.FamilyID,
			Title:          g.Name,
			EstimatedPrice: &price,
			TargetMemberID: g.TargetMemberID,
			CreatorID:      g.PayerID,
			CreationDate:   s.clk.Now(),
		}
		doc.GiftIdeas = append(doc.GiftIdeas, idea)
		dropStatuses(doc, id)
		doc.PurchasedGifts = append(doc.PurchasedGifts[:i], doc.PurchasedGifts[i+1:]...)
		return nil
	})
	if err != nil {
		return domain.GiftIdea{}, err
	}
	return idea, nil
}

func validatePurchaseFields(in PurchaseInput) (name, store string, err error) {
	name = domain.NormalizeText(in.Name)
	if name == "" {
		return "", "", apperr.Invalid("invalid name", map[string]any{"name": "must be non-empty"})
	}
	store = domain.NormalizeText(in.Store)
	if store == "" {
		return "", "", apperr.Invalid("invalid store", map[string]any{"store": "must be non-empty"})
	}
	if in.TotalPrice <= 0 {
		return "", "", apperr.Invalid("invalid totalPrice", map[string]any{"totalPrice": "must be > 0"})
	}
	if len(in.ParticipantIDs) == 0 {
		return "", "", apperr.Invalid("invalid participants", map[string]any{"reimbursementMemberIds": "must be non-empty"})
	}
	seen := make(map[domain.MemberID]bool, len(in.ParticipantIDs))
	for _, id := range in.ParticipantIDs {
		if seen[id] {
			return "", "", apperr.Invalid("invalid participants", map[string]any{"reimbursementMemberIds": "must not contain duplicates"})
		}
		seen[id] = true
	}
	return name, store, nil
}

func validatePurchaseMembers(doc *ledgerstore.Document, family domain.FamilyID, target domain.MemberID, in PurchaseInput) error {
	if err := requireLinkedMember(doc, family, target, "targetMemberId"); err != nil {
		return err
	}
	if err := requireLinkedMember(doc, family, in.PayerID, "payerId"); err != nil {
		return err
	}
	for _, id := range in.ParticipantIDs {
		if err := requireLinkedMember(doc, family, id, "reimbursementMemberIds"); err != nil {
			return err
		}
		// The recipient never repays their own gift.
		if id == target {
			return apperr.Invalid("invalid participants", map[string]any{
				"reimbursementMemberIds": "must not include the target member",
			})
		}
	}
	return nil
}

func requireFamily(doc *ledgerstore.Document, caller domain.Identity, family domain.FamilyID) error {
	if doc.FamilyByID(family) < 0 {
		return apperr.NotFound("FAMILY_NOT_FOUND", "family not found")
	}
	if caller.Admin || doc.MemberLinkedTo(caller.MemberID, family) {
		return nil
	}
	return apperr.Forbidden("caller is not a member of this family")
}

func requireLinkedMember(doc *ledgerstore.Document, family domain.FamilyID, id domain.MemberID, field string) error {
	if doc.MemberByID(id) < 0 {
		return apperr.Invalid("invalid "+field, map[string]any{field: "member not found"})
	}
	if !doc.MemberLinkedTo(id, family) {
		return apperr.Invalid("invalid "+field, map[string]any{field: "member does not belong to this family"})
	}
	return nil
}

func clonePricePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
