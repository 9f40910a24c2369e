package gifts

import (
	"time"

	"github.com/giftflow/giftflow-api/internal/domain"
)

type CreateIdeaInput struct {
	FamilyID domain.FamilyID
	Title    string
	// EstimatedPrice is optional; nil means "not priced yet".
	EstimatedPrice *float64
	TargetMemberID domain.MemberID
}

// PurchaseInput carries the mutable fields of a purchased gift. It is used
// for both create and edit: an edit is a full replace, never a merge.
type PurchaseInput struct {
	Name         string
	TotalPrice   float64
	Store        string
	PurchaseDate time.Time

	PayerID        domain.MemberID
	ParticipantIDs []domain.MemberID
}

type CreatePurchaseInput struct {
	PurchaseInput

	FamilyID       domain.FamilyID
	TargetMemberID domain.MemberID

	// SourceIdeaID, when set, names the gift idea this purchase converts.
	// The idea is deleted in the same atomic write that creates the purchase.
	SourceIdeaID *domain.IdeaID
}
