// Package admin manages members, families, and membership links. It is a
// thin CRUD layer: the gift lifecycle only consumes its output (who belongs
// to which family), never the other way around.
package admin

import (
	"context"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

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

func (s *Service) CreateMember(ctx context.Context, caller domain.Identity, in CreateMemberInput) (domain.Member, error) {
	if err := requireAdmin(caller); err != nil {
		return domain.Member{}, err
	}

	username := strings.ToLower(strings.TrimSpace(in.Username))
	if username == "" {
		return domain.Member{}, apperr.Invalid("invalid username", map[string]any{"username": "must be non-empty"})
	}
	displayName := domain.NormalizeText(in.DisplayName)
	if displayName == "" {
		displayName = username
	}
	email := strings.TrimSpace(in.Email)
	if email != "" {
		if err := validateEmail(email); err != nil {
			return domain.Member{}, apperr.Invalid("invalid email", map[string]any{"email": err.Error()})
		}
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return domain.Member{}, err
	}

	var created domain.Member
	uerr := s.ledger.Update(ctx, func(doc *ledgerstore.Document) error {
		for _, m := range doc.Members {
			if m.Username == username {
				return &apperr.Error{Status: 409, Code: "USERNAME_TAKEN", Message: "a member with this username already exists"}
			}
		}
		now := s.clk.Now()
		created = domain.Member{
			ID:           doc.NextMemberID(),
			Username:     username,
			DisplayName:  displayName,
			Email:        email,
			PasswordHash: hash,
			Admin:        in.Admin,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		doc.Members = append(doc.Members, created)
		return nil
	})
	if uerr != nil {
		return domain.Member{}, uerr
	}
	created.PasswordHash = ""
	return created, nil
}

func (s *Service) UpdateMember(ctx context.Context, caller domain.Identity, id domain.MemberID, in UpdateMemberInput) (domain.Member, error) {
	if err := requireAdmin(caller); err != nil {
		return domain.Member{}, err
	}
	if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
		if err := validateEmail(strings.TrimSpace(*in.Email)); err != nil {
			return domain.Member{}, apperr.Invalid("invalid email", map[string]any{"email": err.Error()})
		}
	}

	var updated domain.Member
	err := s.ledger.Update(ctx, func(doc *ledgerstore.Document) error {
		i := doc.MemberByID(id)
		if i < 0 {
			return apperr.NotFound("MEMBER_NOT_FOUND", "member not found")
		}
		m := doc.Members[i]
		if in.DisplayName != nil {
			dn := domain.NormalizeText(*in.DisplayName)
			if dn == "" {
				return apperr.Invalid("invalid displayName", map[string]any{"displayName": "must be non-empty"})
			}
			m.DisplayName = dn
		}
		if in.Email != nil {
			m.Email = strings.TrimSpace(*in.Email)
		}
		if in.Admin != nil {
			m.Admin = *in.Admin
		}
		if in.IsActive != nil {
			m.IsActive = *in.IsActive
		}
		m.UpdatedAt = s.clk.Now()
		doc.Members[i] = m
		updated = m
		return nil
	})
	if err != nil {
		return domain.Member{}, err
	}
	updated.PasswordHash = ""
	return updated, nil
}

func (s *Service) SetPassword(ctx context.Context, caller domain.Identity, id domain.MemberID, password string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	return s.ledger.Update(ctx, func(doc *ledgerstore.Document) error {
		i := doc.MemberByID(id)
		if i < 0 {
			return apperr.NotFound("MEMBER_NOT_FOUND", "member not found")
		}
		doc.Members[i].PasswordHash = hash
		doc.Members[i].UpdatedAt = s.clk.Now()
		return nil
	})
}

// DeleteMember removes a member and their membership links. It refuses
// while any ledger entry still references the member, so reimbursement
// records can never be orphaned by account cleanup.
func (s *Service) DeleteMember(ctx context.Context, caller domain.Identity, id domain.MemberID) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	return s.ledger.Update(ctx, func(doc *ledgerstore.Document) error {
		i := doc.MemberByID(id)
		if i < 0 {
			return apperr.NotFound("MEMBER_NOT_FOUND", "member not found")
		}
		if memberReferenced(doc, id) {
			return &apperr.Error{
				Status:  409,
				Code:    "MEMBER_IN_USE",
				Message: "member is referenced by ledger entries and cannot be deleted",
			}
		}
		doc.Members = append(doc.Members[:i], doc.Members[i+1:]...)
		kept := make([]domain.FamilyLink, 0, len(doc.FamilyLinks))
		for _, l := range doc.FamilyLinks {
			if l.MemberID != id {
				kept = append(kept, l)
			}
		}
		doc.FamilyLinks = kept
		return nil
	})
}

func (s *Service) CreateFamily(ctx context.Context, caller domain.Identity, name string) (domain.Family, error) {
	if err := requireAdmin(caller); err != nil {
		return domain.Family{}, err
	}
	name = domain.NormalizeText(name)
	if name == "" {
		return domain.Family{}, apperr.Invalid("invalid name", map[string]any{"name": "must be non-empty"})
	}

	var created domain.Family
	err := s.ledger.Update(ctx, func(doc *ledgerstore.Document) error {
		created = domain.Family{ID: doc.NextFamilyID(), Name: name}
		doc.Families = append(doc.Families, created)
		return nil
	})
	if err != nil {
		return domain.Family{}, err
	}
	return created, nil
}

func (s *Service) RenameFamily(ctx context.Context, caller domain.Identity, id domain.FamilyID, name string) (domain.Family, error) {
	if err := requireAdmin(caller); err != nil {
		return domain.Family{}, err
	}
	name = domain.NormalizeText(name)
	if name == "" {
		return domain.Family{}, apperr.Invalid("invalid name", map[string]any{"name": "must be non-empty"})
	}

	var updated domain.Family
	err := s.ledger.Update(ctx, func(doc *ledgerstore.Document) error {
		i := doc.FamilyByID(id)
		if i < 0 {
			return apperr.NotFound("FAMILY_NOT_FOUND", "family not found")
		}
		doc.Families[i].Name = name
		updated = doc.Families[i]
		return nil
	})
	if err != nil {
		return domain.Family{}, err
	}
	return updated, nil
}

// DeleteFamily removes a family and its membership links. It refuses while
// ideas or purchases are still tagged with the family.
func (s *Service) DeleteFamily(ctx context.Context, caller domain.Identity, id domain.FamilyID) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	return s.ledger.Update(ctx, func(doc *ledgerstore.Document) error {
		i := doc.FamilyByID(id)
		if i < 0 {
			return apperr.NotFound("FAMILY_NOT_FOUND", "family not found")
		}
		for _, gi := range doc.GiftIdeas {
			if gi.FamilyID == id {
				return &apperr.Error{Status: 409, Code: "FAMILY_IN_USE", Message: "family still owns gift ideas"}
			}
		}
		for _, g := range doc.PurchasedGifts {
			if g.FamilyID == id {
				return &apperr.Error{Status: 409, Code: "FAMILY_IN_USE", Message: "family still owns purchased gifts"}
			}
		}
		doc.Families = append(doc.Families[:i], doc.Families[i+1:]...)
		kept := make([]domain.FamilyLink, 0, len(doc.FamilyLinks))
		for _, l := range doc.FamilyLinks {
			if l.FamilyID != id {
				kept = append(kept, l)
			}
		}
		doc.FamilyLinks = kept
		return nil
	})
}

// LinkMember adds a membership link; linking an already-linked member is an
// idempotent no-op.
func (s *Service) LinkMember(ctx context.Context, caller domain.Identity, family domain.FamilyID, member domain.MemberID) (domain.FamilyLink, error) {
	if err := requireAdmin(caller); err != nil {
		return domain.FamilyLink{}, err
	}

	var link domain.FamilyLink
	err := s.ledger.Update(ctx, func(doc *ledgerstore.Document) error {
		if doc.FamilyByID(family) < 0 {
			return apperr.NotFound("FAMILY_NOT_FOUND", "family not found")
		}
		if doc.MemberByID(member) < 0 {
			return apperr.NotFound("MEMBER_NOT_FOUND", "member not found")
		}
		for _, l := range doc.FamilyLinks {
			if l.FamilyID == family && l.MemberID == member {
				link = l
				return nil
			}
		}
		link = domain.FamilyLink{ID: doc.NextLinkID(), FamilyID: family, MemberID: member}
		doc.FamilyLinks = append(doc.FamilyLinks, link)
		return nil
	})
	if err != nil {
		return domain.FamilyLink{}, err
	}
	return link, nil
}

func (s *Service) UnlinkMember(ctx context.Context, caller domain.Identity, family domain.FamilyID, member domain.MemberID) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	return s.ledger.Update(ctx, func(doc *ledgerstore.Document) error {
		for i, l := range doc.FamilyLinks {
			if l.FamilyID == family && l.MemberID == member {
				doc.FamilyLinks = append(doc.FamilyLinks[:i], doc.FamilyLinks[i+1:]...)
				return nil
			}
		}
		return apperr.NotFound("LINK_NOT_FOUND", "membership link not found")
	})
}

func memberReferenced(doc *ledgerstore.Document, id domain.MemberID) bool {
	for _, gi := range doc.GiftIdeas {
		if gi.TargetMemberID == id || gi.CreatorID == id {
			return true
		}
	}
	for _, g := range doc.PurchasedGifts {
		if g.PayerID == id || g.TargetMemberID == id {
			return true
		}
		for _, p := range g.ReimbursementMemberIDs {
			if p == id {
				return true
			}
		}
	}
	for _, st := range doc.ReimbursementStatus {
		if st.MemberID == id {
			return true
		}
	}
	return false
}

func requireAdmin(caller domain.Identity) error {
	if caller.Admin {
		return nil
	}
	return apperr.Forbidden("admin privileges required")
}

func validateEmail(s string) error {
	_, err := mail.ParseAddress(s)
	return err
}

func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", apperr.Invalid("invalid password", map[string]any{"password": "must be non-empty"})
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
