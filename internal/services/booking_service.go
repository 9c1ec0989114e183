package services

import (
	"fmt"
	"time"

	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain/models"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/repositories"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/utils"
)

// Amenity fees in centavos, quoted server-side so the client cannot set
// its own charge.
var amenityFees = map[string]int64{
	"clubhouse":     150000,
	"function_hall": 250000,
	"basketball":    50000,
	"swimming_pool": 30000,
}

// BookingService creates and lists amenity bookings.
type BookingService struct {
	Repo      repositories.BookingRepository
	RequestID string
}

type CreateBookingInput struct {
	UserID      int64
	Amenity     string
	BookingDate string
	StartTime   string
	EndTime     string
	Purpose     string
}

// QuoteFee returns the charge for an amenity.
func QuoteFee(amenity string) (int64, error) {
	fee, ok := amenityFees[amenity]
	if !ok {
		return 0, domain.ValidationError{Field: "amenity", Msg: "unknown amenity"}
	}
	return fee, nil
}

func (s BookingService) Create(in CreateBookingInput) (models.Booking, error) {
	fee, err := QuoteFee(in.Amenity)
	if err != nil {
		return models.Booking{}, err
	}

	date, err := utils.ParseDate(in.BookingDate)
	if err != nil {
		return models.Booking{}, domain.ValidationError{Field: "bookingDate", Msg: "must be YYYY-MM-DD", Err: err}
	}
	today, _ := utils.ParseDate(utils.FormatDate(time.Now()))
	if date.Before(today) {
		return models.Booking{}, domain.ValidationError{Field: "bookingDate", Msg: "must not be in the past"}
	}

	start, err := parseClock(in.StartTime)
	if err != nil {
		return models.Booking{}, domain.ValidationError{Field: "startTime", Msg: "must be HH:MM", Err: err}
	}
	end, err := parseClock(in.EndTime)
	if err != nil {
		return models.Booking{}, domain.ValidationError{Field: "endTime", Msg: "must be HH:MM", Err: err}
	}
	if !end.After(start) {
		return models.Booking{}, domain.ValidationError{Field: "endTime", Msg: "must be after startTime"}
	}

	b := models.Booking{
		UserID:         in.UserID,
		Amenity:        in.Amenity,
		BookingDate:    utils.FormatDate(date),
		StartTime:      in.StartTime,
		EndTime:        in.EndTime,
		Purpose:        utils.NormalizeSpace(in.Purpose),
		AmountCentavos: fee,
		Status:         models.BookingAwaitingPayment,
	}
	if err := s.Repo.Create(&b); err != nil {
		return models.Booking{}, err
	}
	utils.LogEvent(s.RequestID, "booking", "create",
		fmt.Sprintf("booking_id=%d amenity=%s date=%s", b.ID, b.Amenity, b.BookingDate))
	return b, nil
}

// Get returns a booking visible to the caller (owner or admin).
func (s BookingService) Get(id, userID int64, isAdmin bool) (models.Booking, error) {
	b, err := s.Repo.GetByID(id)
	if err != nil {
		return models.Booking{}, err
	}
	if b.UserID != userID && !isAdmin {
		return models.Booking{}, domain.ForbiddenError{Msg: "booking belongs to another resident"}
	}
	return b, nil
}

// Cancel flips the caller's booking to cancelled while still allowed.
func (s BookingService) Cancel(id, userID int64) error {
	b, err := s.Repo.GetByID(id)
	if err != nil {
		return err
	}
	if b.UserID != userID {
		return domain.ForbiddenError{Msg: "booking belongs to another resident"}
	}
	if err := s.Repo.Cancel(id, userID); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "booking", "cancel", fmt.Sprintf("booking_id=%d", id))
	return nil
}

func parseClock(s string) (time.Time, error) {
	return time.Parse("15:04", s)
}
