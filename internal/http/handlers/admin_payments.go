package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/repositories"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/services"
)

// GET /api/admin/payments/manual?status=
func (h PaymentHandler) AdminList(c *gin.Context) {
	repo := repositories.PaymentRepository{DB: h.Deps.DB}
	records, err := repo.ListByStatus(c.Query("status"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

type reviewRequest struct {
	PaymentRecordID string `json:"paymentRecordId" binding:"required"`
	Decision        string `json:"decision" binding:"required"`
	ReviewerNote    string `json:"reviewerNote"`
}

// POST /api/admin/payments/manual/review
func (h PaymentHandler) Review(c *gin.Context) {
	var req reviewRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	rec, err := h.service(c).Review(services.ReviewInput{
		PaymentRecordID: req.PaymentRecordID,
		Decision:        req.Decision,
		ReviewerNote:    req.ReviewerNote,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
