package domain

import "time"

// Member is the domain representation of a user account. The password hash
// travels with the profile because the whole ledger persists as a single
// document; read paths that leave the process must scrub it first.
type Member struct {
	ID MemberID `json:"id"`

	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`

	PasswordHash string `json:"passwordHash,omitempty"`
	Admin        bool   `json:"admin"`

	IsActive bool `json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Family is an isolated group of members sharing visibility into each
// other's gift ideas and purchases.
type Family struct {
	ID   FamilyID `json:"id"`
	Name string   `json:"name"`
}

// FamilyLink binds a member to a family. A member may hold zero, one, or
// many links.
type FamilyLink struct {
	ID       LinkID   `json:"id"`
	FamilyID FamilyID `json:"familyId"`
	MemberID MemberID `json:"memberId"`
}

// Identity is the authenticated caller as established by the transport
// layer. Family memberships are resolved against the current ledger
// document rather than carried here, so a stale identity cannot widen
// access.
type Identity struct {
	MemberID MemberID
	Admin    bool
}
