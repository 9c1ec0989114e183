package repositories

import (
	"database/sql"
	"errors"
	"time"

	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain/models"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/utils"
)

type PaymentRepository struct {
	DB *sql.DB
}

const paymentColumns = `id, booking_id, amount_centavos, amount_mismatch,
       COALESCE(proof_ref,''), COALESCE(proof_name,''),
       status, submitted_at, reviewed_at, COALESCE(reviewer_note,''), created_at`

func scanPayment(row *sql.Row) (models.PaymentRecord, error) {
	var (
		p           models.PaymentRecord
		submittedAt sql.NullTime
		reviewedAt  sql.NullTime
	)
	err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.AmountCentavos,
		&p.AmountMismatch,
		&p.ProofRef,
		&p.ProofName,
		&p.Status,
		&submittedAt,
		&reviewedAt,
		&p.ReviewerNote,
		&p.CreatedAt,
	)
	if err != nil {
		return models.PaymentRecord{}, err
	}
	if submittedAt.Valid {
		t := submittedAt.Time
		p.SubmittedAt = &t
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		p.ReviewedAt = &t
	}
	p.Amount = utils.CentavosToDecimal(p.AmountCentavos)
	return p, nil
}

func (r PaymentRepository) GetByID(id string) (models.PaymentRecord, error) {
	if id == "" {
		return models.PaymentRecord{}, domain.ValidationError{Field: "paymentRecordId", Msg: "required"}
	}
	row := r.DB.QueryRow(`SELECT `+paymentColumns+` FROM payment_records WHERE id=$1`, id)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PaymentRecord{}, domain.NotFoundError{Resource: "payment record"}
	}
	if err != nil {
		return models.PaymentRecord{}, domain.DependencyError{Op: "payment record lookup", Err: err}
	}
	return p, nil
}

// GetActiveByBooking returns the booking's single non-terminal record, if any.
func (r PaymentRepository) GetActiveByBooking(bookingID int64) (models.PaymentRecord, bool, error) {
	row := r.DB.QueryRow(`SELECT `+paymentColumns+` FROM payment_records
		WHERE booking_id=$1 AND status IN ($2,$3)`,
		bookingID, models.PaymentAwaitingProof, models.PaymentPendingReview)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PaymentRecord{}, false, nil
	}
	if err != nil {
		return models.PaymentRecord{}, false, domain.DependencyError{Op: "payment record lookup", Err: err}
	}
	return p, true, nil
}

// LatestByBooking returns the most recent record regardless of state.
func (r PaymentRepository) LatestByBooking(bookingID int64) (models.PaymentRecord, error) {
	row := r.DB.QueryRow(`SELECT `+paymentColumns+` FROM payment_records
		WHERE booking_id=$1 ORDER BY created_at DESC LIMIT 1`, bookingID)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PaymentRecord{}, domain.NotFoundError{Resource: "payment record"}
	}
	if err != nil {
		return models.PaymentRecord{}, domain.DependencyError{Op: "payment record lookup", Err: err}
	}
	return p, nil
}

// Insert writes a new record. The partial unique index on non-terminal
// records turns a concurrent duplicate into a ConflictError.
func (r PaymentRepository) Insert(q Querier, p models.PaymentRecord) error {
	_, err := q.Exec(`INSERT INTO payment_records
		(id, booking_id, amount_centavos, amount_mismatch, proof_ref, proof_name, status, submitted_at, created_at)
		VALUES ($1,$2,$3,$4,NULLIF($5,''),$6,$7,$8,$9)`,
		p.ID, p.BookingID, p.AmountCentavos, p.AmountMismatch,
		p.ProofRef, p.ProofName, p.Status, p.SubmittedAt, p.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ConflictError{Resource: "payment record", Msg: "a payment is already in progress for this booking", Err: err}
	}
	if err != nil {
		return domain.DependencyError{Op: "payment record insert", Err: err}
	}
	return nil
}

// TransitionToPendingReview performs the compare-and-swap from
// awaiting_proof. Zero rows affected means another submission won.
func (r PaymentRepository) TransitionToPendingReview(q Querier, id, proofRef, proofName string, amountCentavos int64, mismatch bool, submittedAt time.Time) error {
	res, err := q.Exec(`UPDATE payment_records
		SET status=$1, proof_ref=$2, proof_name=$3, amount_centavos=$4, amount_mismatch=$5, submitted_at=$6
		WHERE id=$7 AND status=$8`,
		models.PaymentPendingReview, proofRef, proofName, amountCentavos, mismatch, submittedAt,
		id, models.PaymentAwaitingProof)
	if err != nil {
		return domain.DependencyError{Op: "payment record update", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.DependencyError{Op: "payment record update", Err: err}
	}
	if n == 0 {
		return domain.ConflictError{Resource: "payment record", Msg: "record is no longer awaiting proof"}
	}
	return nil
}

// Review performs the compare-and-swap from pending_review into a terminal
// state. Zero rows affected means the record was not pending.
func (r PaymentRepository) Review(q Querier, id, status, note string, reviewedAt time.Time) error {
	res, err := q.Exec(`UPDATE payment_records
		SET status=$1, reviewer_note=$2, reviewed_at=$3
		WHERE id=$4 AND status=$5`,
		status, note, reviewedAt, id, models.PaymentPendingReview)
	if err != nil {
		return domain.DependencyError{Op: "payment record review", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.DependencyError{Op: "payment record review", Err: err}
	}
	if n == 0 {
		return domain.InvalidStateError{Resource: "payment record", Msg: "record is not pending review"}
	}
	return nil
}

func (r PaymentRepository) ListByStatus(status string) ([]models.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_records`
	args := []any{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT 200`

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, domain.DependencyError{Op: "payment record list", Err: err}
	}
	defer rows.Close()

	out := []models.PaymentRecord{}
	for rows.Next() {
		var (
			p           models.PaymentRecord
			submittedAt sql.NullTime
			reviewedAt  sql.NullTime
		)
		if err := rows.Scan(
			&p.ID,
			&p.BookingID,
			&p.AmountCentavos,
			&p.AmountMismatch,
			&p.ProofRef,
			&p.ProofName,
			&p.Status,
			&submittedAt,
			&reviewedAt,
			&p.ReviewerNote,
			&p.CreatedAt,
		); err != nil {
			return nil, domain.DependencyError{Op: "payment record list", Err: err}
		}
		if submittedAt.Valid {
			t := submittedAt.Time
			p.SubmittedAt = &t
		}
		if reviewedAt.Valid {
			t := reviewedAt.Time
			p.ReviewedAt = &t
		}
		p.Amount = utils.CentavosToDecimal(p.AmountCentavos)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.DependencyError{Op: "payment record list", Err: err}
	}
	return out, nil
}
