package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain/models"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/repositories"
)

type stubBlobStore struct {
	putCalls    int
	deleteCalls int
	ref         string
	putErr      error
}

func (s *stubBlobStore) Put(_ context.Context, _, _ string, _ io.Reader, _ int64) (string, error) {
	s.putCalls++
	if s.putErr != nil {
		return "", s.putErr
	}
	return s.ref, nil
}

func (s *stubBlobStore) Delete(_ context.Context, _ string) error {
	s.deleteCalls++
	return nil
}

// pngBytes is a minimal payload http.DetectContentType reads as image/png.
func pngBytes(size int) []byte {
	b := make([]byte, size)
	copy(b, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})
	return b
}

func bookingColumns() []string {
	return []string{"id", "user_id", "amenity", "booking_date", "start_time", "end_time",
		"purpose", "amount_centavos", "status", "created_at", "updated_at"}
}

func paymentColumns() []string {
	return []string{"id", "booking_id", "amount_centavos", "amount_mismatch", "proof_ref",
		"proof_name", "status", "submitted_at", "reviewed_at", "reviewer_note", "created_at"}
}

func bookingRow(status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(bookingColumns()).
		AddRow(int64(1), int64(42), "clubhouse", "2030-01-15", "10:00", "14:00",
			"birthday", int64(50000), status, now, now)
}

func paymentRow(id, status string) *sqlmock.Rows {
	return sqlmock.NewRows(paymentColumns()).
		AddRow(id, int64(1), int64(50000), false, "", "", status, nil, nil, "", time.Now())
}

func newPaymentService(t *testing.T, blobs *stubBlobStore) (PaymentService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	mock.MatchExpectationsInOrder(false)

	svc := PaymentService{
		DB:            db,
		PaymentRepo:   repositories.PaymentRepository{DB: db},
		BookingRepo:   repositories.BookingRepository{DB: db},
		Blobs:         blobs,
		AccountName:   "Grove HOA",
		AccountNumber: "0917-000-0000",
	}
	return svc, mock, func() { db.Close() }
}

func TestSubmitProofTransitionsAwaitingRecord(t *testing.T) {
	blobs := &stubBlobStore{ref: "https://cdn/proofs/1/a.png"}
	svc, mock, done := newPaymentService(t, blobs)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WillReturnRows(bookingRow(models.BookingAwaitingProof))
	mock.ExpectQuery("SELECT (.+) FROM payment_records").
		WillReturnRows(paymentRow("rec-1", models.PaymentAwaitingProof))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payment_records").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	data := pngBytes(2 << 20)
	rec, err := svc.SubmitProof(context.Background(), SubmitProofInput{
		BookingID:      1,
		UserID:         42,
		AmountCentavos: 50000,
		File:           bytes.NewReader(data),
		Size:           int64(len(data)),
		Filename:       "gcash.png",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if rec.Status != models.PaymentPendingReview {
		t.Fatalf("status = %s, want pending_review", rec.Status)
	}
	if rec.SubmittedAt == nil {
		t.Fatalf("submittedAt not set")
	}
	if rec.ProofRef != blobs.ref {
		t.Fatalf("proofRef = %s", rec.ProofRef)
	}
	if blobs.putCalls != 1 {
		t.Fatalf("blob put calls = %d", blobs.putCalls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSubmitProofConflictWhilePendingReview(t *testing.T) {
	blobs := &stubBlobStore{ref: "https://cdn/proofs/1/a.png"}
	svc, mock, done := newPaymentService(t, blobs)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WillReturnRows(bookingRow(models.BookingPendingReview))
	mock.ExpectQuery("SELECT (.+) FROM payment_records").
		WillReturnRows(paymentRow("rec-1", models.PaymentPendingReview))

	data := pngBytes(1024)
	_, err := svc.SubmitProof(context.Background(), SubmitProofInput{
		BookingID:      1,
		UserID:         42,
		AmountCentavos: 50000,
		File:           bytes.NewReader(data),
		Size:           int64(len(data)),
		Filename:       "gcash.png",
	})
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if blobs.putCalls != 0 {
		t.Fatalf("blob must not be stored on conflict, put calls = %d", blobs.putCalls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSubmitProofRejectsOversizedFile(t *testing.T) {
	blobs := &stubBlobStore{}
	svc, _, done := newPaymentService(t, blobs)
	defer done()

	_, err := svc.SubmitProof(context.Background(), SubmitProofInput{
		BookingID:      1,
		UserID:         42,
		AmountCentavos: 50000,
		File:           bytes.NewReader(pngBytes(1024)),
		Size:           6 << 20,
		Filename:       "big.png",
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if blobs.putCalls != 0 {
		t.Fatalf("no storage write expected, got %d", blobs.putCalls)
	}
}

func TestSubmitProofRejectsNonImage(t *testing.T) {
	blobs := &stubBlobStore{}
	svc, _, done := newPaymentService(t, blobs)
	defer done()

	data := []byte("%PDF-1.4 definitely not an image")
	_, err := svc.SubmitProof(context.Background(), SubmitProofInput{
		BookingID:      1,
		UserID:         42,
		AmountCentavos: 50000,
		File:           bytes.NewReader(data),
		Size:           int64(len(data)),
		Filename:       "proof.pdf",
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSubmitProofAfterRejectionCreatesFreshRecord(t *testing.T) {
	blobs := &stubBlobStore{ref: "https://cdn/proofs/1/b.png"}
	svc, mock, done := newPaymentService(t, blobs)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WillReturnRows(bookingRow(models.BookingAwaitingProof))
	// no active record
	mock.ExpectQuery("SELECT (.+) FROM payment_records").
		WillReturnRows(sqlmock.NewRows(paymentColumns()))
	// latest record is the rejected one
	mock.ExpectQuery("SELECT (.+) FROM payment_records").
		WillReturnRows(paymentRow("rec-old", models.PaymentRejected))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payment_records").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	data := pngBytes(1024)
	rec, err := svc.SubmitProof(context.Background(), SubmitProofInput{
		BookingID:      1,
		UserID:         42,
		AmountCentavos: 50000,
		File:           bytes.NewReader(data),
		Size:           int64(len(data)),
		Filename:       "retry.png",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if rec.ID == "rec-old" {
		t.Fatalf("rejected record must not be reused")
	}
	if rec.Status != models.PaymentPendingReview {
		t.Fatalf("status = %s", rec.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSubmitProofStorageFailure(t *testing.T) {
	blobs := &stubBlobStore{putErr: domain.DependencyError{Op: "storage upload", Err: errors.New("boom")}}
	svc, mock, done := newPaymentService(t, blobs)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WillReturnRows(bookingRow(models.BookingAwaitingProof))
	mock.ExpectQuery("SELECT (.+) FROM payment_records").
		WillReturnRows(paymentRow("rec-1", models.PaymentAwaitingProof))

	data := pngBytes(1024)
	_, err := svc.SubmitProof(context.Background(), SubmitProofInput{
		BookingID:      1,
		UserID:         42,
		AmountCentavos: 50000,
		File:           bytes.NewReader(data),
		Size:           int64(len(data)),
		Filename:       "gcash.png",
	})
	if !domain.IsDependency(err) {
		t.Fatalf("expected DependencyError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSubmitProofFlagsAmountMismatch(t *testing.T) {
	blobs := &stubBlobStore{ref: "https://cdn/proofs/1/c.png"}
	svc, mock, done := newPaymentService(t, blobs)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WillReturnRows(bookingRow(models.BookingAwaitingProof))
	mock.ExpectQuery("SELECT (.+) FROM payment_records").
		WillReturnRows(paymentRow("rec-1", models.PaymentAwaitingProof))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payment_records").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	data := pngBytes(1024)
	rec, err := svc.SubmitProof(context.Background(), SubmitProofInput{
		BookingID:      1,
		UserID:         42,
		AmountCentavos: 49900, // booking quotes 500.00
		File:           bytes.NewReader(data),
		Size:           int64(len(data)),
		Filename:       "gcash.png",
	})
	if err != nil {
		t.Fatalf("mismatch should not block submission: %v", err)
	}
	if !rec.AmountMismatch {
		t.Fatalf("mismatch flag not set")
	}
}

func TestSubmitProofForbiddenForOtherResident(t *testing.T) {
	blobs := &stubBlobStore{}
	svc, mock, done := newPaymentService(t, blobs)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WillReturnRows(bookingRow(models.BookingAwaitingProof))

	data := pngBytes(1024)
	_, err := svc.SubmitProof(context.Background(), SubmitProofInput{
		BookingID:      1,
		UserID:         99, // booking belongs to user 42
		AmountCentavos: 50000,
		File:           bytes.NewReader(data),
		Size:           int64(len(data)),
		Filename:       "gcash.png",
	})
	if !domain.IsForbidden(err) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
}

func TestSubmitProofCancelledBookingRejected(t *testing.T) {
	blobs := &stubBlobStore{}
	svc, mock, done := newPaymentService(t, blobs)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WillReturnRows(bookingRow(models.BookingCancelled))

	data := pngBytes(1024)
	_, err := svc.SubmitProof(context.Background(), SubmitProofInput{
		BookingID:      1,
		UserID:         42,
		AmountCentavos: 50000,
		File:           bytes.NewReader(data),
		Size:           int64(len(data)),
		Filename:       "gcash.png",
	})
	if !domain.IsInvalidState(err) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if blobs.putCalls != 0 {
		t.Fatalf("blob must not be stored for a cancelled booking, put calls = %d", blobs.putCalls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSubmitProofConfirmedBookingConflicts(t *testing.T) {
	svc, mock, done := newPaymentService(t, &stubBlobStore{})
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WillReturnRows(bookingRow(models.BookingConfirmed))

	data := pngBytes(1024)
	_, err := svc.SubmitProof(context.Background(), SubmitProofInput{
		BookingID:      1,
		UserID:         42,
		AmountCentavos: 50000,
		File:           bytes.NewReader(data),
		Size:           int64(len(data)),
		Filename:       "gcash.png",
	})
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestReviewApproveConfirmsBooking(t *testing.T) {
	svc, mock, done := newPaymentService(t, &stubBlobStore{})
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM payment_records WHERE id=").
		WillReturnRows(paymentRow("rec-1", models.PaymentPendingReview))
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WillReturnRows(bookingRow(models.BookingPendingReview))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payment_records").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings").
		WithArgs(models.BookingConfirmed, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec, err := svc.Review(ReviewInput{PaymentRecordID: "rec-1", Decision: DecisionApprove})
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if rec.Status != models.PaymentApproved {
		t.Fatalf("status = %s", rec.Status)
	}
	if rec.ReviewedAt == nil {
		t.Fatalf("reviewedAt not set")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReviewRejectRevertsBooking(t *testing.T) {
	svc, mock, done := newPaymentService(t, &stubBlobStore{})
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM payment_records WHERE id=").
		WillReturnRows(paymentRow("rec-1", models.PaymentPendingReview))
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WillReturnRows(bookingRow(models.BookingPendingReview))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payment_records").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings").
		WithArgs(models.BookingAwaitingProof, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec, err := svc.Review(ReviewInput{
		PaymentRecordID: "rec-1",
		Decision:        DecisionReject,
		ReviewerNote:    "reference number not visible",
	})
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if rec.Status != models.PaymentRejected {
		t.Fatalf("status = %s", rec.Status)
	}
	if rec.ReviewerNote != "reference number not visible" {
		t.Fatalf("note = %q", rec.ReviewerNote)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReviewNonPendingRecordFails(t *testing.T) {
	svc, mock, done := newPaymentService(t, &stubBlobStore{})
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM payment_records WHERE id=").
		WillReturnRows(paymentRow("rec-1", models.PaymentApproved))

	_, err := svc.Review(ReviewInput{PaymentRecordID: "rec-1", Decision: DecisionApprove})
	if !domain.IsInvalidState(err) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReviewRollsBackWhenBookingUpdateFails(t *testing.T) {
	svc, mock, done := newPaymentService(t, &stubBlobStore{})
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM payment_records WHERE id=").
		WillReturnRows(paymentRow("rec-1", models.PaymentPendingReview))
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WillReturnRows(bookingRow(models.BookingPendingReview))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payment_records").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := svc.Review(ReviewInput{PaymentRecordID: "rec-1", Decision: DecisionApprove})
	if !domain.IsDependency(err) {
		t.Fatalf("expected DependencyError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReviewSurfacesPartialFailureWhenRollbackFails(t *testing.T) {
	svc, mock, done := newPaymentService(t, &stubBlobStore{})
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM payment_records WHERE id=").
		WillReturnRows(paymentRow("rec-1", models.PaymentPendingReview))
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WillReturnRows(bookingRow(models.BookingPendingReview))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payment_records").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback().
		WillReturnError(errors.New("connection lost"))

	_, err := svc.Review(ReviewInput{PaymentRecordID: "rec-1", Decision: DecisionApprove})
	if !domain.IsPartialFailure(err) {
		t.Fatalf("expected PartialFailureError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReviewRejectsCancelledBooking(t *testing.T) {
	svc, mock, done := newPaymentService(t, &stubBlobStore{})
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM payment_records WHERE id=").
		WillReturnRows(paymentRow("rec-1", models.PaymentPendingReview))
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WillReturnRows(bookingRow(models.BookingCancelled))

	_, err := svc.Review(ReviewInput{PaymentRecordID: "rec-1", Decision: DecisionApprove})
	if !domain.IsInvalidState(err) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReviewInvalidDecision(t *testing.T) {
	svc, _, done := newPaymentService(t, &stubBlobStore{})
	defer done()

	_, err := svc.Review(ReviewInput{PaymentRecordID: "rec-1", Decision: "maybe"})
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestInstructionsCreatesAwaitingRecordOnce(t *testing.T) {
	svc, mock, done := newPaymentService(t, &stubBlobStore{})
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WillReturnRows(bookingRow(models.BookingAwaitingPayment))
	mock.ExpectQuery("SELECT (.+) FROM payment_records").
		WillReturnRows(sqlmock.NewRows(paymentColumns()))
	mock.ExpectExec("INSERT INTO payment_records").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings").
		WithArgs(models.BookingAwaitingProof, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	info, err := svc.Instructions(1, 42, false)
	if err != nil {
		t.Fatalf("instructions failed: %v", err)
	}
	if info.Amount != "500.00" {
		t.Fatalf("amount = %s", info.Amount)
	}
	if info.Status != models.PaymentAwaitingProof {
		t.Fatalf("status = %s", info.Status)
	}
	if info.AccountNumber != "0917-000-0000" {
		t.Fatalf("account = %s", info.AccountNumber)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInstructionsReusesActiveRecord(t *testing.T) {
	svc, mock, done := newPaymentService(t, &stubBlobStore{})
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WillReturnRows(bookingRow(models.BookingAwaitingProof))
	mock.ExpectQuery("SELECT (.+) FROM payment_records").
		WillReturnRows(paymentRow("rec-1", models.PaymentAwaitingProof))

	info, err := svc.Instructions(1, 42, false)
	if err != nil {
		t.Fatalf("instructions failed: %v", err)
	}
	if info.RecordID != "rec-1" {
		t.Fatalf("recordId = %s, want existing record reused", info.RecordID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInstructionsRaceWinnerAlreadyFinalized(t *testing.T) {
	svc, mock, done := newPaymentService(t, &stubBlobStore{})
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WillReturnRows(bookingRow(models.BookingAwaitingPayment))
	mock.ExpectQuery("SELECT (.+) FROM payment_records").
		WillReturnRows(sqlmock.NewRows(paymentColumns()))
	mock.ExpectExec("INSERT INTO payment_records").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "payment_records_active_booking"})
	// the concurrent winner's record went terminal before the re-fetch
	mock.ExpectQuery("SELECT (.+) FROM payment_records").
		WillReturnRows(sqlmock.NewRows(paymentColumns()))

	_, err := svc.Instructions(1, 42, false)
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInstructionsConfirmedBookingConflicts(t *testing.T) {
	svc, mock, done := newPaymentService(t, &stubBlobStore{})
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WillReturnRows(bookingRow(models.BookingConfirmed))

	_, err := svc.Instructions(1, 42, false)
	if !domain.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}
