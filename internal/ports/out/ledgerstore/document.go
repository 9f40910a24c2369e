package ledgerstore

import "github.com/giftflow/giftflow-api/internal/domain"

// Id allocation mirrors the persisted layout's contract: max existing id + 1,
// starting at 1. Ids below the current maximum are never reused.

func (d *Document) NextMemberID() domain.MemberID {
	var max domain.MemberID
	for _, m := range d.Members {
		if m.ID > max {
			max = m.ID
		}
	}
	return max + 1
}

func (d *Document) NextFamilyID() domain.FamilyID {
	var max domain.FamilyID
	for _, f := range d.Families {
		if f.ID > max {
			max = f.ID
		}
	}
	return max + 1
}

func (d *Document) NextIdeaID() domain.IdeaID {
	var max domain.IdeaID
	for _, i := range d.GiftIdeas {
		if i.ID > max {
			max = i.ID
		}
	}
	return max + 1
}

func (d *Document) NextGiftID() domain.GiftID {
	var max domain.GiftID
	for _, g := range d.PurchasedGifts {
		if g.ID > max {
			max = g.ID
		}
	}
	return max + 1
}

func (d *Document) NextStatusID() domain.StatusID {
	var max domain.StatusID
	for _, s := range d.ReimbursementStatus {
		if s.ID > max {
			max = s.ID
		}
	}
	return max + 1
}

func (d *Document) NextLinkID() domain.LinkID {
	var max domain.LinkID
	for _, l := range d.FamilyLinks {
		if l.ID > max {
			max = l.ID
		}
	}
	return max + 1
}

// MemberByID returns the index of the member with the given id, or -1.
func (d *Document) MemberByID(id domain.MemberID) int {
	for i, m := range d.Members {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// FamilyByID returns the index of the family with the given id, or -1.
func (d *Document) FamilyByID(id domain.FamilyID) int {
	for i, f := range d.Families {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// IdeaByID returns the index of the gift idea with the given id, or -1.
func (d *Document) IdeaByID(id domain.IdeaID) int {
	for i, gi := range d.GiftIdeas {
		if gi.ID == id {
			return i
		}
	}
	return -1
}

// GiftByID returns the index of the purchased gift with the given id, or -1.
func (d *Document) GiftByID(id domain.GiftID) int {
	for i, g := range d.PurchasedGifts {
		if g.ID == id {
			return i
		}
	}
	return -1
}

// StatusByID returns the index of the reimbursement status with the given
// id, or -1.
func (d *Document) StatusByID(id domain.StatusID) int {
	for i, s := range d.ReimbursementStatus {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// MemberLinkedTo reports whether the member holds a membership link to the
// family.
func (d *Document) MemberLinkedTo(member domain.MemberID, family domain.FamilyID) bool {
	for _, l := range d.FamilyLinks {
		if l.MemberID == member && l.FamilyID == family {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the document. Adapters that keep the
// document in memory hand out clones so callers cannot alias shared state.
func (d Document) Clone() Document {
	cp := d
	cp.Families = append([]domain.Family(nil), d.Families...)
	cp.Members = append([]domain.Member(nil), d.Members...)
	cp.GiftIdeas = make([]domain.GiftIdea, len(d.GiftIdeas))
	for i, gi := range d.GiftIdeas {
		cp.GiftIdeas[i] = gi
		if gi.EstimatedPrice != nil {
			v := *gi.EstimatedPrice
			cp.GiftIdeas[i].EstimatedPrice = &v
		}
	}
	cp.PurchasedGifts = make([]domain.PurchasedGift, len(d.PurchasedGifts))
	for i, g := range d.PurchasedGifts {
		cp.PurchasedGifts[i] = g
		cp.PurchasedGifts[i].ReimbursementMemberIDs = append([]domain.MemberID(nil), g.ReimbursementMemberIDs...)
	}
	cp.ReimbursementStatus = append([]domain.ReimbursementStatus(nil), d.ReimbursementStatus...)
	cp.FamilyLinks = append([]domain.FamilyLink(nil), d.FamilyLinks...)
	return cp
}
