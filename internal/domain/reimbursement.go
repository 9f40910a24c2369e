package domain

type PaymentStatus string

const (
	StatusUnpaid        PaymentStatus = "UNPAID"
	StatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	StatusFullyPaid     PaymentStatus = "FULLY_PAID"
)

// Valid reports whether s is one of the three known payment states.
func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusUnpaid, StatusPartiallyPaid, StatusFullyPaid:
		return true
	}
	return false
}

// ReimbursementStatus tracks one participant's repayment progress for one
// purchased gift. The set of records for a gift always matches its
// participant list exactly; the records are dropped and regenerated
// whenever the gift is created, edited, or destroyed.
type ReimbursementStatus struct {
	ID     StatusID `json:"id"`
	GiftID GiftID   `json:"giftId"`

	MemberID   MemberID      `json:"memberId"`
	Status     PaymentStatus `json:"status"`
	AmountPaid float64       `json:"amountPaid"`
}
