package domain

import "time"

// GiftIdea is an unpurchased gift suggestion for a member. An idea and a
// purchase are mutually exclusive representations of the same logical gift:
// converting one destroys the other.
type GiftIdea struct {
	ID       IdeaID   `json:"id"`
	FamilyID FamilyID `json:"familyId"`

	Title string `json:"title"`
	// EstimatedPrice is an optional non-negative amount; nil means "not priced yet".
	EstimatedPrice *float64 `json:"estimatedPrice"`

	TargetMemberID MemberID  `json:"targetMemberId"`
	CreatorID      MemberID  `json:"creatorId"`
	CreationDate   time.Time `json:"creationDate"`
}

// PurchasedGift is a completed acquisition with a definite price, a payer,
// and a repayment split among participants. The recipient (target member)
// is excluded from the participant list.
type PurchasedGift struct {
	ID       GiftID   `json:"id"`
	FamilyID FamilyID `json:"familyId"`

	Name       string    `json:"name"`
	TotalPrice float64   `json:"totalPrice"`
	Store      string    `json:"store"`
	PurchaseDate time.Time `json:"purchaseDate"`

	PayerID        MemberID `json:"payerId"`
	TargetMemberID MemberID `json:"targetMemberId"`

	// ReimbursementMemberIDs is the non-empty set of members who owe a share.
	ReimbursementMemberIDs []MemberID `json:"reimbursementMemberIds"`
}
