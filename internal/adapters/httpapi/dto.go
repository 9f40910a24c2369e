package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Request DTOs. estimatedPrice is tri-state (absent, null, value) so that
// an edit can clear the price explicitly; both absent and null clear it.

type createIdeaRequest struct {
	FamilyID       int64                      `json:"familyId"`
	Title          string                     `json:"title"`
	EstimatedPrice nullable.Nullable[float64] `json:"estimatedPrice"`
	TargetMemberID int64                      `json:"targetMemberId"`
}

type updateIdeaRequest struct {
	EstimatedPrice nullable.Nullable[float64] `json:"estimatedPrice"`
}

type purchaseRequest struct {
	Name                   string    `json:"name"`
	TotalPrice             float64   `json:"totalPrice"`
	Store                  string    `json:"store"`
	PurchaseDate           time.Time `json:"purchaseDate"`
	PayerID                int64     `json:"payerId"`
	ReimbursementMemberIDs []int64   `json:"reimbursementMemberIds"`
}

type createPurchaseRequest struct {
	purchaseRequest

	FamilyID       int64  `json:"familyId"`
	TargetMemberID int64  `json:"targetMemberId"`
	SourceIdeaID   *int64 `json:"sourceIdeaId"`
}

type setStatusRequest struct {
	Status     string  `json:"status"`
	AmountPaid float64 `json:"amountPaid"`
}

type partialPaymentRequest struct {
	AmountPaid float64 `json:"amountPaid"`
	AmountDue  float64 `json:"amountDue"`
}

type createMemberRequest struct {
	Username    string              `json:"username"`
	DisplayName string              `json:"displayName"`
	Email       openapi_types.Email `json:"email"`
	Password    string              `json:"password"`
	Admin       bool                `json:"admin"`
}

type updateMemberRequest struct {
	DisplayName *string              `json:"displayName"`
	Email       *openapi_types.Email `json:"email"`
	Admin       *bool                `json:"admin"`
	IsActive    *bool                `json:"isActive"`
}

type setPasswordRequest struct {
	Password string `json:"password"`
}

type familyRequest struct {
	Name string `json:"name"`
}

func priceFromNullable(n nullable.Nullable[float64]) *float64 {
	if !n.IsSpecified() || n.IsNull() {
		return nil
	}
	v, err := n.Get()
	if err != nil {
		return nil
	}
	return &v
}
