package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain/models"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/repositories"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/utils"
)

// DocsService renders payment receipts and visitor gate passes as PDFs.
type DocsService struct {
	PaymentRepo repositories.PaymentRepository
	BookingRepo repositories.BookingRepository
	VisitorRepo repositories.VisitorRepository
	RequestID   string
}

// GenerateReceipt renders the receipt for an approved payment. The caller
// must own the underlying booking or be an admin.
func (s DocsService) GenerateReceipt(paymentID string, userID int64, isAdmin bool) ([]byte, string, error) {
	rec, err := s.PaymentRepo.GetByID(paymentID)
	if err != nil {
		return nil, "", err
	}
	booking, err := s.BookingRepo.GetByID(rec.BookingID)
	if err != nil {
		return nil, "", err
	}
	if booking.UserID != userID && !isAdmin {
		return nil, "", domain.ForbiddenError{Msg: "booking belongs to another resident"}
	}
	if rec.Status != models.PaymentApproved {
		return nil, "", domain.InvalidStateError{Resource: "payment record", Current: rec.Status}
	}

	utils.LogEvent(s.RequestID, "docs", "generate_receipt", fmt.Sprintf("record_id=%s", rec.ID))
	return buildReceiptPDF(rec, booking)
}

// GenerateGatePass renders the guardhouse pass for a registered visitor.
func (s DocsService) GenerateGatePass(visitorID, userID int64, isAdmin bool) ([]byte, string, error) {
	v, err := s.VisitorRepo.GetByID(visitorID)
	if err != nil {
		return nil, "", err
	}
	if v.UserID != userID && !isAdmin {
		return nil, "", domain.ForbiddenError{Msg: "visitor belongs to another resident"}
	}

	utils.LogEvent(s.RequestID, "docs", "generate_gate_pass", fmt.Sprintf("visitor_id=%d", v.ID))
	return buildGatePassPDF(v)
}

func buildReceiptPDF(rec models.PaymentRecord, booking models.Booking) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payment Receipt", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "GROVE PAYMENT RECEIPT")
	pdf.Ln(12)

	reviewed := "-"
	if rec.ReviewedAt != nil {
		reviewed = utils.FormatDateTime(*rec.ReviewedAt)
	}

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Receipt No   : RCP-%d-%s", booking.ID, shortID(rec.ID)),
		fmt.Sprintf("Booking      : #%d %s", booking.ID, safe(booking.Amenity, "-")),
		fmt.Sprintf("Date         : %s %s-%s", booking.BookingDate, booking.StartTime, booking.EndTime),
		fmt.Sprintf("Amount Paid  : %s", utils.FormatPesos(rec.AmountCentavos)),
		"Method       : GCash (manual review)",
		fmt.Sprintf("Approved On  : %s", reviewed),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "This receipt confirms that your proof of payment was reviewed and approved by the Grove admin office.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Msg: "render receipt", Err: err}
	}
	filename := fmt.Sprintf("RECEIPT_%d_%s.pdf", booking.ID, shortID(rec.ID))
	return buf.Bytes(), filename, nil
}

func buildGatePassPDF(v models.Visitor) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Visitor Gate Pass", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "GROVE VISITOR GATE PASS")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Visitor      : %s", safe(v.VisitorName, "-")),
		fmt.Sprintf("Visit Date   : %s", safe(v.VisitDate, "-")),
		fmt.Sprintf("Plate No     : %s", safe(v.PlateNumber, "-")),
		fmt.Sprintf("Purpose      : %s", safe(v.Purpose, "-")),
		fmt.Sprintf("Pass Code    : %s", strings.ToUpper(shortID(v.PassCode))),
		fmt.Sprintf("Issued       : %s", utils.FormatDateTime(time.Now())),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Present this pass at the guardhouse. Valid for one entry on the visit date only.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Msg: "render gate pass", Err: err}
	}
	filename := fmt.Sprintf("GATEPASS_%d.pdf", v.ID)
	return buf.Bytes(), filename, nil
}

func safe(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func shortID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
