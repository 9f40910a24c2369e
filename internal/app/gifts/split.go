package gifts

import (
	"github.com/giftflow/giftflow-api/internal/app/apperr"
	"github.com/giftflow/giftflow-api/internal/domain"
	"github.com/giftflow/giftflow-api/internal/ports/out/ledgerstore"
)

// ComputeShare divides totalPrice evenly across the participants. No
// rounding is applied: share * len(participants) may drift from totalPrice
// by ordinary floating-point error, which the ledger accepts.
func ComputeShare(totalPrice float64, participants []domain.MemberID) (float64, error) {
	if len(participants) == 0 {
		return 0, apperr.Invalid("invalid participants", map[string]any{
			"reimbursementMemberIds": "must be non-empty",
		})
	}
	if totalPrice <= 0 {
		return 0, apperr.Invalid("invalid totalPrice", map[string]any{
			"totalPrice": "must be > 0",
		})
	}
	return totalPrice / float64(len(participants)), nil
}

// regenerateStatuses drops every reimbursement record owned by the gift and
// creates a fresh one per participant: the payer is self-settled (FullyPaid
// at exactly one share), everyone else starts Unpaid at zero. Ids continue
// sequentially from the highest surviving record.
func regenerateStatuses(doc *ledgerstore.Document, g domain.PurchasedGift) error {
	share, err := ComputeShare(g.TotalPrice, g.ReimbursementMemberIDs)
	if err != nil {
		return err
	}

	kept := make([]domain.ReimbursementStatus, 0, len(doc.ReimbursementStatus))
	for _, s := range doc.ReimbursementStatus {
		if s.GiftID != g.ID {
			kept = append(kept, s)
		}
	}
	doc.ReimbursementStatus = kept

	next := doc.NextStatusID()
	for _, memberID := range g.ReimbursementMemberIDs {
		rec := domain.ReimbursementStatus{
			ID:       next,
			GiftID:   g.ID,
			MemberID: memberID,
			Status:   domain.StatusUnpaid,
		}
		if memberID == g.PayerID {
			rec.Status = domain.StatusFullyPaid
			rec.AmountPaid = share
		}
		doc.ReimbursementStatus = append(doc.ReimbursementStatus, rec)
		next++
	}
	return nil
}

// dropStatuses removes every reimbursement record owned by the gift.
func dropStatuses(doc *ledgerstore.Document, id domain.GiftID) {
	kept := make([]domain.ReimbursementStatus, 0, len(doc.ReimbursementStatus))
	for _, s := range doc.ReimbursementStatus {
		if s.GiftID != id {
			kept = append(kept, s)
		}
	}
	doc.ReimbursementStatus = kept
}
