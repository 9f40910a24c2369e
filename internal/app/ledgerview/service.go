// Package ledgerview derives the per-family, per-caller visible subset of
// the ledger. It is read-only: nothing here mutates the store.
package ledgerview

import (
	"context"
	"sort"

	"github.com/giftflow/giftflow-api/internal/app/apperr"
	"github.com/giftflow/giftflow-api/internal/domain"
	clockport "github.com/giftflow/giftflow-api/internal/ports/out/clock"
	"github.com/giftflow/giftflow-api/internal/ports/out/ledgerstore"
)

type Service struct {
	ledger *ledgerstore.Handle
	clk    clockport.Clock
}

func NewService(ledger *ledgerstore.Handle, clk clockport.Clock) *Service {
	return &Service{ledger: ledger, clk: clk}
}

// VisibleLedger is the family-scoped read model handed to the presentation
// layer. Member records are scrubbed of credentials before leaving the
// service.
type VisibleLedger struct {
	Family              domain.Family                `json:"family"`
	Members             []domain.Member              `json:"members"`
	GiftIdeas           []domain.GiftIdea            `json:"giftIdeas"`
	PurchasedGifts      []domain.PurchasedGift       `json:"purchasedGifts"`
	ReimbursementStatus []domain.ReimbursementStatus `json:"reimbursementStatus"`
}

// ArchiveYear groups the purchases of one past calendar year.
type ArchiveYear struct {
	Year      int                    `json:"year"`
	Purchases []domain.PurchasedGift `json:"purchases"`
}

func (s *Service) VisibleLedger(ctx context.Context, caller domain.Identity, family domain.FamilyID) (VisibleLedger, error) {
	var out VisibleLedger
	err := s.ledger.View(ctx, func(doc *ledgerstore.Document) error {
		fi, err := authorizeFamily(doc, caller, family)
		if err != nil {
			return err
		}
		out.Family = doc.Families[fi]

		out.Members = make([]domain.Member, 0)
		for _, m := range doc.Members {
			if doc.MemberLinkedTo(m.ID, family) {
				m.PasswordHash = ""
				out.Members = append(out.Members, m)
			}
		}

		out.GiftIdeas = make([]domain.GiftIdea, 0)
		for _, gi := range doc.GiftIdeas {
			if gi.FamilyID == family {
				out.GiftIdeas = append(out.GiftIdeas, gi)
			}
		}

		// Statuses are scoped strictly by their owning gift's family.
		visibleGifts := make(map[domain.GiftID]bool)
		out.PurchasedGifts = make([]domain.PurchasedGift, 0)
		for _, g := range doc.PurchasedGifts {
			if g.FamilyID == family {
				out.PurchasedGifts = append(out.PurchasedGifts, g)
				visibleGifts[g.ID] = true
			}
		}
		out.ReimbursementStatus = make([]domain.ReimbursementStatus, 0)
		for _, st := range doc.ReimbursementStatus {
			if visibleGifts[st.GiftID] {
				out.ReimbursementStatus = append(out.ReimbursementStatus, st)
			}
		}
		return nil
	})
	if err != nil {
		return VisibleLedger{}, err
	}
	return out, nil
}

// Archives returns the family's purchases from calendar years before the
// current one, newest year first.
func (s *Service) Archives(ctx context.Context, caller domain.Identity, family domain.FamilyID) ([]ArchiveYear, error) {
	currentYear := s.clk.Now().Year()

	var out []ArchiveYear
	err := s.ledger.View(ctx, func(doc *ledgerstore.Document) error {
		if _, err := authorizeFamily(doc, caller, family); err != nil {
			return err
		}

		byYear := make(map[int][]domain.PurchasedGift)
		for _, g := range doc.PurchasedGifts {
			if g.FamilyID != family {
				continue
			}
			if y := g.PurchaseDate.Year(); y < currentYear {
				byYear[y] = append(byYear[y], g)
			}
		}

		out = make([]ArchiveYear, 0, len(byYear))
		for y, gs := range byYear {
			sort.Slice(gs, func(i, j int) bool { return gs[i].PurchaseDate.Before(gs[j].PurchaseDate) })
			out = append(out, ArchiveYear{Year: y, Purchases: gs})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func authorizeFamily(doc *ledgerstore.Document, caller domain.Identity, family domain.FamilyID) (int, error) {
	fi := doc.FamilyByID(family)
	if fi < 0 {
		return -1, apperr.NotFound("FAMILY_NOT_FOUND", "family not found")
	}
	if caller.Admin || doc.MemberLinkedTo(caller.MemberID, family) {
		return fi, nil
	}
	return -1, apperr.Forbidden("caller is not a member of this family")
}
