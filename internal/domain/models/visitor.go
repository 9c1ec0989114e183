package models

import "time"

// Visitor is a resident's pre-registered guest. PassCode is printed on the
// gate pass and checked by the guardhouse.
type Visitor struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	VisitorName string    `json:"visitorName"`
	VisitDate   string    `json:"visitDate"`
	PlateNumber string    `json:"plateNumber,omitempty"`
	Purpose     string    `json:"purpose,omitempty"`
	PassCode    string    `json:"passCode"`
	CreatedAt   time.Time `json:"createdAt"`
}
