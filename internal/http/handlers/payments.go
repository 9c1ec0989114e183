package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/config"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/http/middleware"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/repositories"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/services"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/utils"
)

type PaymentHandler struct {
	Deps config.Deps
}

func (h PaymentHandler) service(c *gin.Context) services.PaymentService {
	return services.PaymentService{
		DB:            h.Deps.DB,
		PaymentRepo:   repositories.PaymentRepository{DB: h.Deps.DB},
		BookingRepo:   repositories.BookingRepository{DB: h.Deps.DB},
		Blobs:         h.Deps.Blobs,
		AccountName:   h.Deps.Env.GCashAccountName,
		AccountNumber: h.Deps.Env.GCashAccountNumber,
		RequestID:     middleware.GetRequestID(c),
	}
}

// GET /api/payments/manual/info?bookingId=
func (h PaymentHandler) Info(c *gin.Context) {
	bookingID, ok := queryID(c, "bookingId")
	if !ok {
		return
	}
	info, err := h.service(c).Instructions(bookingID, middleware.CurrentUserID(c), middleware.IsAdmin(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// POST /api/payments/manual/upload-proof
// multipart form: proof (image file), bookingId, amount
func (h PaymentHandler) UploadProof(c *gin.Context) {
	bookingID, ok := postID(c, "bookingId")
	if !ok {
		return
	}

	amount, err := utils.ParsePesos(c.PostForm("amount"))
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "amount", Msg: "invalid amount", Err: err})
		return
	}

	fileHeader, err := c.FormFile("proof")
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "proof", Msg: "proof image is required", Err: err})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "proof", Msg: "cannot read uploaded file", Err: err})
		return
	}
	defer file.Close()

	rec, err := h.service(c).SubmitProof(c.Request.Context(), services.SubmitProofInput{
		BookingID:      bookingID,
		UserID:         middleware.CurrentUserID(c),
		IsAdmin:        middleware.IsAdmin(c),
		AmountCentavos: amount,
		File:           file,
		Size:           fileHeader.Size,
		Filename:       fileHeader.Filename,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":          rec.ID,
		"status":      rec.Status,
		"submittedAt": rec.SubmittedAt,
	})
}

// GET /api/payments/manual/status?bookingId=
func (h PaymentHandler) Status(c *gin.Context) {
	bookingID, ok := queryID(c, "bookingId")
	if !ok {
		return
	}
	rec, err := h.service(c).Status(bookingID, middleware.CurrentUserID(c), middleware.IsAdmin(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GET /api/payments/manual/:id/receipt
func (h PaymentHandler) Receipt(c *gin.Context) {
	id := c.Param("id")
	svc := services.DocsService{
		PaymentRepo: repositories.PaymentRepository{DB: h.Deps.DB},
		BookingRepo: repositories.BookingRepository{DB: h.Deps.DB},
		RequestID:   middleware.GetRequestID(c),
	}
	pdf, filename, err := svc.GenerateReceipt(id, middleware.CurrentUserID(c), middleware.IsAdmin(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
