package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/giftflow/giftflow-api/internal/app/admin"
	"github.com/giftflow/giftflow-api/internal/app/gifts"
	"github.com/giftflow/giftflow-api/internal/app/ledgerview"
	"github.com/giftflow/giftflow-api/internal/app/reimbursements"
	"github.com/giftflow/giftflow-api/internal/domain"
)

// Server is the HTTP adapter: it decodes requests, delegates to the
// application services, and encodes responses. No domain rules live here.
type Server struct {
	Gifts          *gifts.Service
	Reimbursements *reimbursements.Service
	Ledger         *ledgerview.Service
	Admin          *admin.Service
	Log            *logrus.Logger
}

func NewServer(giftsSvc *gifts.Service, reimbSvc *reimbursements.Service, viewSvc *ledgerview.Service, adminSvc *admin.Service, log *logrus.Logger) *Server {
	return &Server{
		Gifts:          giftsSvc,
		Reimbursements: reimbSvc,
		Ledger:         viewSvc,
		Admin:          adminSvc,
		Log:            log,
	}
}

// --- request plumbing ---

func (s *Server) requireIdentity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity", nil)
	}
	return id, ok
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid request body", nil)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	n, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || n <= 0 {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid "+name+" path parameter", nil)
		return 0, false
	}
	return n, true
}

func familyIDParam(w http.ResponseWriter, r *http.Request) (domain.FamilyID, bool) {
	n, err := strconv.ParseInt(r.URL.Query().Get("familyId"), 10, 64)
	if err != nil || n <= 0 {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "missing or invalid familyId query parameter", nil)
		return 0, false
	}
	return domain.FamilyID(n), true
}

// --- ledger views ---

func (s *Server) getLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	family, ok := familyIDParam(w, r)
	if !ok {
		return
	}
	out, err := s.Ledger.VisibleLedger(r.Context(), id, family)
	if err != nil {
		writeAppError(w, r, s.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getArchives(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	family, ok := familyIDParam(w, r)
	if !ok {
		return
	}
	out, err := s.Ledger.Archives(r.Context(), id, family)
	if err != nil {
		writeAppError(w, r, s.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"archives": out})
}

// --- gift ideas ---

func (s *Server) createIdea(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	var req createIdeaRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	idea, err := s.Gifts.CreateIdea(r.Context(), id, gifts.CreateIdeaInput{
		FamilyID:       domain.FamilyID(req.FamilyID),
		Title:          req.Title,
		EstimatedPrice: priceFromNullable(req.EstimatedPrice),
		TargetMemberID: domain.MemberID(req.TargetMemberID),
	})
	if err != nil {
		writeAppError(w, r, s.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, idea)
}

func (s *Server) updateIdea(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	ideaID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateIdeaRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	idea, err := s.Gifts.EditIdea(r.Context(), id, domain.IdeaID(ideaID), priceFromNullable(req.EstimatedPrice))
	if err != nil {
		writeAppError(w, r, s.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

func (s *Server) deleteIdea(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	ideaID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.Gifts.DeleteIdea(r.Context(), id, domain.IdeaID(ideaID)); err != nil {
		writeAppError(w, r, s.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- purchased gifts ---

func purchaseInputFromRequest(req purchaseRequest) gifts.PurchaseInput {
	participants := make([]domain.MemberID, 0, len(req.ReimbursementMemberIDs))
	for _, n := range req.ReimbursementMemberIDs {
		participants = append(participants, domain.MemberID(n))
	}
	return gifts.PurchaseInput{
		Name:           req.Name,
		TotalPrice:     req.TotalPrice,
		Store:          req.Store,
		PurchaseDate:   req.PurchaseDate,
		PayerID:        domain.MemberID(req.PayerID),
		ParticipantIDs: participants,
	}
}

func (s *Server) createPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	var req createPurchaseRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	in := gifts.CreatePurchaseInput{
		PurchaseInput:  purchaseInputFromRequest(req.purchaseRequest),
		FamilyID:       domain.FamilyID(req.FamilyID),
		TargetMemberID: domain.MemberID(req.TargetMemberID),
	}
	if req.SourceIdeaID != nil {
		src := domain.IdeaID(*req.SourceIdeaID)
		in.SourceIdeaID = &src
	}
	gift, err := s.Gifts.CreatePurchase(r.Context(), id, in)
	if err != nil {
		writeAppError(w, r, s.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, gift)
}

func (s *Server) updatePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	giftID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req purchaseRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	gift, err := s.Gifts.EditPurchase(r.Context(), id, domain.GiftID(giftID), purchaseInputFromRequest(req))
	if err != nil {
		writeAppError(w, r, s.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, gift)
}

func (s *Server) deletePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	giftID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.Gifts.DeletePurchase(r.Context(), id, domain.GiftID(giftID)); err != nil {
		writeAppError(w, r, s.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) revertPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	giftID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	idea, err := s.Gifts.RevertPurchaseToIdea(r.Context(), id, domain.GiftID(giftID))
	if err != nil {
		writeAppError(w, r, s.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

// --- reimbursement statuses ---

func (s *Server) setStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	statusID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req setStatusRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	st, err := s.Reimbursements.SetStatus(r.Context(), id, domain.StatusID(statusID), domain.PaymentStatus(req.Status), req.AmountPaid)
	if err != nil {
		writeAppError(w, r, s.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) recordPartialPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	statusID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req partialPaymentRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	st, err := s.Reimbursements.RecordPartialPayment(r.Context(), id, domain.StatusID(statusID), req.AmountPaid, req.AmountDue)
	if err != nil {
		writeAppError(w, r, s.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// --- admin ---

func (s *Server) adminCreateMember(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	var req createMemberRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	m, err := s.Admin.CreateMember(r.Context(), id, admin.CreateMemberInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Email:       string(req.Email),
		Password:    req.Password,
		Admin:       req.Admin,
	})
	if err != nil {
		writeAppError(w, r, s.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) adminUpdateMember(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	memberID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateMemberRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	in := admin.UpdateMemberInput{
		DisplayName: req.DisplayName,
		Admin:       req.Admin,
		IsActive:    req.IsActive,
	}
	if req.Email != nil {
		email := string(*req.Email)
		in.Email = &email
	}
	m, err := s.Admin.UpdateMember(r.Context(), id, domain.MemberID(memberID), in)
	if err != nil {
		writeAppError(w, r, s.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) adminSetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	memberID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req setPasswordRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := s.Admin.SetPassword(r.Context(), id, domain.MemberID(memberID), req.Password); err != nil {
		writeAppError(w, r, s.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminDeleteMember(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	memberID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.Admin.DeleteMember(r.Context(), id, domain.MemberID(memberID)); err != nil {
		writeAppError(w, r, s.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminCreateFamily(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	var req familyRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	f, err := s.Admin.CreateFamily(r.Context(), id, req.Name)
	if err != nil {
		writeAppError(w, r, s.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) adminRenameFamily(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	familyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req familyRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	f, err := s.Admin.RenameFamily(r.Context(), id, domain.FamilyID(familyID), req.Name)
	if err != nil {
		writeAppError(w, r, s.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) adminDeleteFamily(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	familyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.Admin.DeleteFamily(r.Context(), id, domain.FamilyID(familyID)); err != nil {
		writeAppError(w, r, s.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminLinkMember(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	familyID, ok := pathID(w, r, "familyId")
	if !ok {
		return
	}
	memberID, ok := pathID(w, r, "memberId")
	if !ok {
		return
	}
	link, err := s.Admin.LinkMember(r.Context(), id, domain.FamilyID(familyID), domain.MemberID(memberID))
	if err != nil {
		writeAppError(w, r, s.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (s *Server) adminUnlinkMember(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	familyID, ok := pathID(w, r, "familyId")
	if !ok {
		return
	}
	memberID, ok := pathID(w, r, "memberId")
	if !ok {
		return
	}
	if err := s.Admin.UnlinkMember(r.Context(), id, domain.FamilyID(familyID), domain.MemberID(memberID)); err != nil {
		writeAppError(w, r, s.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
