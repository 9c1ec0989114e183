package repositories

import (
	"database/sql"
	"errors"

	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain/models"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/utils"
)

type BookingRepository struct {
	DB *sql.DB
}

const bookingColumns = `id, user_id, amenity, booking_date::text, start_time, end_time,
       COALESCE(purpose,''), amount_centavos, status, created_at, updated_at`

func scanBooking(scan func(dest ...any) error) (models.Booking, error) {
	var b models.Booking
	err := scan(
		&b.ID,
		&b.UserID,
		&b.Amenity,
		&b.BookingDate,
		&b.StartTime,
		&b.EndTime,
		&b.Purpose,
		&b.AmountCentavos,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return models.Booking{}, err
	}
	b.Amount = utils.CentavosToDecimal(b.AmountCentavos)
	return b, nil
}

func (r BookingRepository) Create(b *models.Booking) error {
	err := r.DB.QueryRow(`INSERT INTO bookings
		(user_id, amenity, booking_date, start_time, end_time, purpose, amount_centavos, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`,
		b.UserID, b.Amenity, b.BookingDate, b.StartTime, b.EndTime, b.Purpose, b.AmountCentavos, b.Status,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return domain.DependencyError{Op: "booking insert", Err: err}
	}
	b.Amount = utils.CentavosToDecimal(b.AmountCentavos)
	return nil
}

func (r BookingRepository) GetByID(id int64) (models.Booking, error) {
	if id <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "bookingId", Msg: "must be positive"}
	}
	row := r.DB.QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	b, err := scanBooking(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	if err != nil {
		return models.Booking{}, domain.DependencyError{Op: "booking lookup", Err: err}
	}
	return b, nil
}

func (r BookingRepository) ListByUser(userID int64) ([]models.Booking, error) {
	rows, err := r.DB.Query(`SELECT `+bookingColumns+` FROM bookings
		WHERE user_id=$1 ORDER BY created_at DESC LIMIT 200`, userID)
	if err != nil {
		return nil, domain.DependencyError{Op: "booking list", Err: err}
	}
	return collectBookings(rows)
}

func (r BookingRepository) ListByStatus(status string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	args := []any{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT 200`

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, domain.DependencyError{Op: "booking list", Err: err}
	}
	return collectBookings(rows)
}

func collectBookings(rows *sql.Rows) ([]models.Booking, error) {
	defer rows.Close()
	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, domain.DependencyError{Op: "booking list", Err: err}
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.DependencyError{Op: "booking list", Err: err}
	}
	return out, nil
}

// SetStatus updates a booking's status; callable inside a transaction.
func (r BookingRepository) SetStatus(q Querier, id int64, status string) error {
	res, err := q.Exec(`UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2`, status, id)
	if err != nil {
		return domain.DependencyError{Op: "booking update", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.DependencyError{Op: "booking update", Err: err}
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "booking"}
	}
	return nil
}

// Cancel flips a booking to cancelled unless it is already confirmed or
// cancelled. Zero rows affected means the state no longer allows it.
func (r BookingRepository) Cancel(id, userID int64) error {
	res, err := r.DB.Exec(`UPDATE bookings SET status=$1, updated_at=now()
		WHERE id=$2 AND user_id=$3 AND status NOT IN ($4,$5)`,
		models.BookingCancelled, id, userID, models.BookingConfirmed, models.BookingCancelled)
	if err != nil {
		return domain.DependencyError{Op: "booking cancel", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.DependencyError{Op: "booking cancel", Err: err}
	}
	if n == 0 {
		return domain.InvalidStateError{Resource: "booking", Msg: "booking cannot be cancelled"}
	}
	return nil
}
