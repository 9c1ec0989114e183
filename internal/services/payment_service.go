package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain/models"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/repositories"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/storage"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/utils"
)

// MaxProofSize caps uploaded proof images at 5 MiB.
const MaxProofSize = 5 << 20

// PaymentService runs the manual GCash payment workflow: instructions,
// proof submission, status, and admin review.
type PaymentService struct {
	DB          *sql.DB
	PaymentRepo repositories.PaymentRepository
	BookingRepo repositories.BookingRepository
	Blobs       storage.BlobStore

	AccountName   string
	AccountNumber string
	RequestID     string
}

type PaymentInstructions struct {
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	Amount        string `json:"amount"`
	RecordID      string `json:"recordId"`
	Status        string `json:"status"`
}

// Instructions returns the GCash transfer target for a booking and makes
// sure an awaiting_proof record exists. Idempotent: repeated calls reuse
// the booking's non-terminal record.
func (s PaymentService) Instructions(bookingID, userID int64, isAdmin bool) (PaymentInstructions, error) {
	booking, err := s.BookingRepo.GetByID(bookingID)
	if err != nil {
		return PaymentInstructions{}, err
	}
	if booking.UserID != userID && !isAdmin {
		return PaymentInstructions{}, domain.ForbiddenError{Msg: "booking belongs to another resident"}
	}
	switch booking.Status {
	case models.BookingConfirmed:
		return PaymentInstructions{}, domain.ConflictError{Resource: "booking", Msg: "booking is already paid"}
	case models.BookingCancelled:
		return PaymentInstructions{}, domain.InvalidStateError{Resource: "booking", Current: booking.Status}
	}

	rec, ok, err := s.PaymentRepo.GetActiveByBooking(bookingID)
	if err != nil {
		return PaymentInstructions{}, err
	}
	if !ok {
		rec = models.PaymentRecord{
			ID:             uuid.NewString(),
			BookingID:      bookingID,
			AmountCentavos: booking.AmountCentavos,
			Status:         models.PaymentAwaitingProof,
			CreatedAt:      utils.NowUTC(),
		}
		if err := s.PaymentRepo.Insert(s.DB, rec); err != nil {
			if !domain.IsConflict(err) {
				return PaymentInstructions{}, err
			}
			// lost a race with a concurrent request; reuse the winner
			rec, ok, err = s.PaymentRepo.GetActiveByBooking(bookingID)
			if err != nil {
				return PaymentInstructions{}, err
			}
			if !ok {
				// the winner's record already reached a terminal state
				return PaymentInstructions{}, domain.ConflictError{
					Resource: "payment record",
					Msg:      "payment for this booking was just finalized",
				}
			}
		}
		utils.LogEvent(s.RequestID, "payment", "instructions",
			fmt.Sprintf("booking_id=%d record_id=%s created", bookingID, rec.ID))
	}
	if booking.Status == models.BookingAwaitingPayment {
		if err := s.BookingRepo.SetStatus(s.DB, bookingID, models.BookingAwaitingProof); err != nil {
			return PaymentInstructions{}, err
		}
	}

	return PaymentInstructions{
		AccountName:   s.AccountName,
		AccountNumber: s.AccountNumber,
		Amount:        utils.CentavosToDecimal(rec.AmountCentavos),
		RecordID:      rec.ID,
		Status:        rec.Status,
	}, nil
}

type SubmitProofInput struct {
	BookingID      int64
	UserID         int64
	IsAdmin        bool
	AmountCentavos int64
	File           io.Reader
	Size           int64
	Filename       string
}

// SubmitProof validates the uploaded image, stores it, and moves the
// booking's payment record to pending_review. The record update and the
// booking update share one transaction; the blob is written first and
// deleted best-effort if the transaction does not commit.
func (s PaymentService) SubmitProof(ctx context.Context, in SubmitProofInput) (models.PaymentRecord, error) {
	if in.AmountCentavos <= 0 {
		return models.PaymentRecord{}, domain.ValidationError{Field: "amount", Msg: "must be positive"}
	}

	body, contentType, err := OpenImage(in.File, in.Size)
	if err != nil {
		return models.PaymentRecord{}, err
	}

	booking, err := s.BookingRepo.GetByID(in.BookingID)
	if err != nil {
		return models.PaymentRecord{}, err
	}
	if booking.UserID != in.UserID && !in.IsAdmin {
		return models.PaymentRecord{}, domain.ForbiddenError{Msg: "booking belongs to another resident"}
	}
	switch booking.Status {
	case models.BookingConfirmed:
		return models.PaymentRecord{}, domain.ConflictError{Resource: "booking", Msg: "booking is already paid"}
	case models.BookingCancelled:
		return models.PaymentRecord{}, domain.InvalidStateError{Resource: "booking", Current: booking.Status}
	}

	mismatch := in.AmountCentavos != booking.AmountCentavos
	if mismatch {
		utils.LogEvent(s.RequestID, "payment", "submit_proof",
			fmt.Sprintf("booking_id=%d amount mismatch: submitted=%s quoted=%s",
				in.BookingID, utils.CentavosToDecimal(in.AmountCentavos), utils.CentavosToDecimal(booking.AmountCentavos)))
	}

	active, hasActive, err := s.PaymentRepo.GetActiveByBooking(in.BookingID)
	if err != nil {
		return models.PaymentRecord{}, err
	}

	fresh := false
	switch {
	case hasActive && active.Status == models.PaymentAwaitingProof:
		// normal cycle: transition the existing record
	case hasActive:
		return models.PaymentRecord{}, domain.ConflictError{Resource: "payment record", Msg: "a proof is already pending review"}
	default:
		latest, err := s.PaymentRepo.LatestByBooking(in.BookingID)
		if err != nil {
			if domain.IsNotFound(err) {
				return models.PaymentRecord{}, domain.ConflictError{Resource: "payment record", Msg: "request payment instructions first"}
			}
			return models.PaymentRecord{}, err
		}
		if latest.Status != models.PaymentRejected {
			return models.PaymentRecord{}, domain.ConflictError{Resource: "payment record", Msg: "no payment cycle awaiting proof"}
		}
		// retention policy: a rejected cycle stays; resubmission starts a
		// fresh record already pending review
		fresh = true
	}

	key := fmt.Sprintf("proofs/%d/%s%s", in.BookingID, uuid.NewString(), proofExt(in.Filename, contentType))
	ref, err := s.Blobs.Put(ctx, key, contentType, body, in.Size)
	if err != nil {
		return models.PaymentRecord{}, err
	}

	now := utils.NowUTC()
	proofName := path.Base(in.Filename)
	if proofName == "." || proofName == "/" {
		proofName = "payment-proof"
	}

	var rec models.PaymentRecord
	err = s.inTx(func(tx *sql.Tx) error {
		if fresh {
			rec = models.PaymentRecord{
				ID:             uuid.NewString(),
				BookingID:      in.BookingID,
				AmountCentavos: in.AmountCentavos,
				AmountMismatch: mismatch,
				ProofRef:       ref,
				ProofName:      proofName,
				Status:         models.PaymentPendingReview,
				SubmittedAt:    &now,
				CreatedAt:      now,
			}
			if err := s.PaymentRepo.Insert(tx, rec); err != nil {
				return err
			}
		} else {
			if err := s.PaymentRepo.TransitionToPendingReview(tx, active.ID, ref, proofName, in.AmountCentavos, mismatch, now); err != nil {
				return err
			}
			rec = active
			rec.AmountCentavos = in.AmountCentavos
			rec.AmountMismatch = mismatch
			rec.ProofRef = ref
			rec.ProofName = proofName
			rec.Status = models.PaymentPendingReview
			rec.SubmittedAt = &now
		}
		return s.BookingRepo.SetStatus(tx, in.BookingID, models.BookingPendingReview)
	})
	if err != nil {
		s.discardBlob(ctx, ref)
		return models.PaymentRecord{}, err
	}

	rec.Amount = utils.CentavosToDecimal(rec.AmountCentavos)
	utils.LogEvent(s.RequestID, "payment", "submit_proof",
		fmt.Sprintf("booking_id=%d record_id=%s pending review", in.BookingID, rec.ID))
	return rec, nil
}

// Status returns the booking's most recent payment record, terminal or not.
func (s PaymentService) Status(bookingID, userID int64, isAdmin bool) (models.PaymentRecord, error) {
	booking, err := s.BookingRepo.GetByID(bookingID)
	if err != nil {
		return models.PaymentRecord{}, err
	}
	if booking.UserID != userID && !isAdmin {
		return models.PaymentRecord{}, domain.ForbiddenError{Msg: "booking belongs to another resident"}
	}
	return s.PaymentRepo.LatestByBooking(bookingID)
}

const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

type ReviewInput struct {
	PaymentRecordID string
	Decision        string
	ReviewerNote    string
}

// Review applies an admin decision to a pending record and updates the
// booking in the same transaction. A rollback failure after a partial
// write surfaces as PartialFailureError, never as success.
func (s PaymentService) Review(in ReviewInput) (models.PaymentRecord, error) {
	if in.Decision != DecisionApprove && in.Decision != DecisionReject {
		return models.PaymentRecord{}, domain.ValidationError{Field: "decision", Msg: "must be approve or reject"}
	}

	rec, err := s.PaymentRepo.GetByID(in.PaymentRecordID)
	if err != nil {
		return models.PaymentRecord{}, err
	}
	if rec.Status != models.PaymentPendingReview {
		return models.PaymentRecord{}, domain.InvalidStateError{Resource: "payment record", Current: rec.Status}
	}
	booking, err := s.BookingRepo.GetByID(rec.BookingID)
	if err != nil {
		return models.PaymentRecord{}, err
	}
	if booking.Status == models.BookingCancelled {
		return models.PaymentRecord{}, domain.InvalidStateError{
			Resource: "booking",
			Current:  booking.Status,
			Msg:      "booking was cancelled while the proof was pending",
		}
	}

	newStatus := models.PaymentApproved
	bookingStatus := models.BookingConfirmed
	if in.Decision == DecisionReject {
		newStatus = models.PaymentRejected
		bookingStatus = models.BookingAwaitingProof
	}

	now := utils.NowUTC()
	tx, err := s.DB.Begin()
	if err != nil {
		return models.PaymentRecord{}, domain.DependencyError{Op: "begin transaction", Err: err}
	}

	if err := s.PaymentRepo.Review(tx, rec.ID, newStatus, in.ReviewerNote, now); err != nil {
		_ = tx.Rollback()
		return models.PaymentRecord{}, err
	}
	if err := s.BookingRepo.SetStatus(tx, rec.BookingID, bookingStatus); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return models.PaymentRecord{}, domain.PartialFailureError{
				Msg: fmt.Sprintf("payment record %s reviewed but booking %d not updated", rec.ID, rec.BookingID),
				Err: err,
			}
		}
		return models.PaymentRecord{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.PaymentRecord{}, domain.DependencyError{Op: "commit review", Err: err}
	}

	rec.Status = newStatus
	rec.ReviewedAt = &now
	rec.ReviewerNote = in.ReviewerNote
	utils.LogEvent(s.RequestID, "payment", "review",
		fmt.Sprintf("record_id=%s booking_id=%d decision=%s", rec.ID, rec.BookingID, in.Decision))
	return rec, nil
}

func (s PaymentService) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return domain.DependencyError{Op: "begin transaction", Err: err}
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.DependencyError{Op: "commit transaction", Err: err}
	}
	return nil
}

// discardBlob removes an orphaned proof after a failed transaction.
// Failures are logged only; the periodic storage sweep picks up leftovers.
func (s PaymentService) discardBlob(ctx context.Context, ref string) {
	if err := s.Blobs.Delete(ctx, ref); err != nil {
		utils.LogEvent(s.RequestID, "payment", "discard_blob", "orphan cleanup failed: "+err.Error())
	}
}

// sniffImage verifies the upload is an image by content, not by the
// declared header, and hands back a reader including the sniffed prefix.
func sniffImage(r io.Reader) (io.Reader, string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, "", domain.DependencyError{Op: "read upload", Err: err}
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", domain.ValidationError{Field: "proof", Msg: "file must be an image"}
	}
	return io.MultiReader(bytes.NewReader(head), r), contentType, nil
}

func proofExt(filename, contentType string) string {
	if ext := strings.ToLower(path.Ext(filename)); ext != "" && len(ext) <= 5 {
		return ext
	}
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
