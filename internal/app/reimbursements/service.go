// Package reimbursements owns the transitions of an individual
// participant's repayment record.
package reimbursements

import (
	"context"

	"github.com/giftflow/giftflow-api/internal/app/apperr"
	"github.com/giftflow/giftflow-api/internal/domain"
	"github.com/giftflow/giftflow-api/internal/ports/out/ledgerstore"
)

type Service struct {
	ledger *ledgerstore.Handle
}

func NewService(ledger *ledgerstore.Handle) *Service {
	return &Service{ledger: ledger}
}

// SetStatus overwrites both fields of a reimbursement record as supplied.
// The pair is taken at face value: marking FullyPaid is expected to carry
// the full share, marking Unpaid to carry zero, but the tracker does not
// cross-check them — callers own that consistency.
func (s *Service) SetStatus(ctx context.Context, caller domain.Identity, id domain.StatusID, status domain.PaymentStatus, amountPaid float64) (domain.ReimbursementStatus, error) {
	if !status.Valid() {
		return domain.ReimbursementStatus{}, apperr.Invalid("invalid status", map[string]any{
			"status": "must be UNPAID, PARTIALLY_PAID, or FULLY_PAID",
		})
	}
	if amountPaid < 0 {
		return domain.ReimbursementStatus{}, apperr.Invalid("invalid amountPaid", map[string]any{"amountPaid": "must be >= 0"})
	}

	var updated domain.ReimbursementStatus
	err := s.ledger.Update(ctx, func(doc *ledgerstore.Document) error {
		i, err := s.authorize(doc, caller, id)
		if err != nil {
			return err
		}
		doc.ReimbursementStatus[i].Status = status
		doc.ReimbursementStatus[i].AmountPaid = amountPaid
		updated = doc.ReimbursementStatus[i]
		return nil
	})
	if err != nil {
		return domain.ReimbursementStatus{}, err
	}
	return updated, nil
}

// RecordPartialPayment records an absolute amount repaid so far and derives
// the status from it: FullyPaid once the amount covers the share owed,
// PartiallyPaid otherwise. A zero payment therefore yields PartiallyPaid,
// not Unpaid — "zero progress recorded" is distinct from "never addressed".
func (s *Service) RecordPartialPayment(ctx context.Context, caller domain.Identity, id domain.StatusID, amountPaid, amountDue float64) (domain.ReimbursementStatus, error) {
	if amountPaid < 0 {
		return domain.ReimbursementStatus{}, apperr.Invalid("invalid amountPaid", map[string]any{"amountPaid": "must be >= 0"})
	}

	var updated domain.ReimbursementStatus
	err := s.ledger.Update(ctx, func(doc *ledgerstore.Document) error {
		i, err := s.authorize(doc, caller, id)
		if err != nil {
			return err
		}
		status := domain.StatusPartiallyPaid
		if amountPaid >= amountDue {
			status = domain.StatusFullyPaid
		}
		doc.ReimbursementStatus[i].Status = status
		doc.ReimbursementStatus[i].AmountPaid = amountPaid
		updated = doc.ReimbursementStatus[i]
		return nil
	})
	if err != nil {
		return domain.ReimbursementStatus{}, err
	}
	return updated, nil
}

// authorize locates the record and enforces the recipient rule: the target
// member of a gift may not certify repayment progress on it, admins
// excepted.
func (s *Service) authorize(doc *ledgerstore.Document, caller domain.Identity, id domain.StatusID) (int, error) {
	i := doc.StatusByID(id)
	if i < 0 {
		return -1, apperr.NotFound("STATUS_NOT_FOUND", "reimbursement status not found")
	}
	gi := doc.GiftByID(doc.ReimbursementStatus[i].GiftID)
	if gi < 0 {
		// Orphaned record: should be impossible given lifecycle atomicity.
		return -1, apperr.NotFound("GIFT_NOT_FOUND", "purchased gift not found")
	}
	g := doc.PurchasedGifts[gi]
	if err := requireFamily(doc, caller, g.FamilyID); err != nil {
		return -1, err
	}
	if g.TargetMemberID == caller.MemberID && !caller.Admin {
		return -1, apperr.Forbidden("recipients cannot modify repayment status of their own gift")
	}
	return i, nil
}

func requireFamily(doc *ledgerstore.Document, caller domain.Identity, family domain.FamilyID) error {
	if caller.Admin || doc.MemberLinkedTo(caller.MemberID, family) {
		return nil
	}
	return apperr.Forbidden("caller is not a member of this family")
}
