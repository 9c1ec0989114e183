package models

import "time"

// Payment record statuses. A record is terminal once approved or rejected;
// a booking may only spawn a new record after the prior one is terminal.
const (
	PaymentAwaitingProof = "awaiting_proof"
	PaymentPendingReview = "pending_review"
	PaymentApproved      = "approved"
	PaymentRejected      = "rejected"
)

// PaymentRecord tracks one manual GCash payment cycle for a booking.
type PaymentRecord struct {
	ID             string     `json:"id"`
	BookingID      int64      `json:"bookingId"`
	AmountCentavos int64      `json:"-"`
	Amount         string     `json:"amount"`
	AmountMismatch bool       `json:"amountMismatch"`
	ProofRef       string     `json:"proofRef,omitempty"`
	ProofName      string     `json:"proofName,omitempty"`
	Status         string     `json:"status"`
	SubmittedAt    *time.Time `json:"submittedAt,omitempty"`
	ReviewedAt     *time.Time `json:"reviewedAt,omitempty"`
	ReviewerNote   string     `json:"reviewerNote,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func PaymentTerminal(status string) bool {
	return status == PaymentApproved || status == PaymentRejected
}
