package domain

// Identifiers are numeric and unique within their owning collection.
// New ids are allocated as max existing id + 1, starting at 1.

// MemberID is an internal identifier for a member account.
type MemberID int64

// FamilyID is an internal identifier for a family.
type FamilyID int64

// IdeaID is an internal identifier for a gift idea.
type IdeaID int64

// GiftID is an internal identifier for a purchased gift.
type GiftID int64

// StatusID is an internal identifier for a reimbursement status record.
type StatusID int64

// LinkID is an internal identifier for a member-to-family membership link.
type LinkID int64
