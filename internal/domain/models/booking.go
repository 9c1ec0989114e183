package models

import "time"

// Booking statuses. The middle three are driven by the payment workflow;
// cancelled is only reachable before the booking is confirmed.
const (
	BookingAwaitingPayment = "awaiting_payment"
	BookingAwaitingProof   = "awaiting_proof"
	BookingPendingReview   = "pending_review"
	BookingConfirmed       = "confirmed"
	BookingCancelled       = "cancelled"
)

// Booking is a resident's reservation of a community amenity.
type Booking struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"userId"`
	Amenity        string    `json:"amenity"`
	BookingDate    string    `json:"bookingDate"`
	StartTime      string    `json:"startTime"`
	EndTime        string    `json:"endTime"`
	Purpose        string    `json:"purpose,omitempty"`
	AmountCentavos int64     `json:"-"`
	Amount         string    `json:"amount"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
