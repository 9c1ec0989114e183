package models

import "time"

// Concern statuses, forward-only.
const (
	ConcernPending    = "pending"
	ConcernInProgress = "in_progress"
	ConcernResolved   = "resolved"
)

var concernRank = map[string]int{
	ConcernPending:    0,
	ConcernInProgress: 1,
	ConcernResolved:   2,
}

// ConcernStatusAllowed reports whether a transition moves forward.
func ConcernStatusAllowed(from, to string) bool {
	fr, ok := concernRank[from]
	if !ok {
		return false
	}
	tr, ok := concernRank[to]
	if !ok {
		return false
	}
	return tr > fr
}

// Concern is a resident-filed community issue.
type Concern struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Category    string    `json:"category"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	PhotoRef    string    `json:"photoRef,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
