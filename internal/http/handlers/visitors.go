package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/config"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain/models"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/http/middleware"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/repositories"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/services"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/utils"
)

type VisitorHandler struct {
	Deps config.Deps
}

type registerVisitorRequest struct {
	VisitorName string `json:"visitorName" binding:"required"`
	VisitDate   string `json:"visitDate" binding:"required"`
	PlateNumber string `json:"plateNumber"`
	Purpose     string `json:"purpose"`
}

// POST /api/visitors
func (h VisitorHandler) Create(c *gin.Context) {
	var req registerVisitorRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	date, err := utils.ParseDate(req.VisitDate)
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "visitDate", Msg: "must be YYYY-MM-DD", Err: err})
		return
	}

	v := models.Visitor{
		UserID:      middleware.CurrentUserID(c),
		VisitorName: strings.TrimSpace(req.VisitorName),
		VisitDate:   utils.FormatDate(date),
		PlateNumber: strings.ToUpper(strings.TrimSpace(req.PlateNumber)),
		Purpose:     strings.TrimSpace(req.Purpose),
		PassCode:    uuid.NewString(),
	}
	repo := repositories.VisitorRepository{DB: h.Deps.DB}
	if err := repo.Create(&v); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// GET /api/visitors
func (h VisitorHandler) List(c *gin.Context) {
	repo := repositories.VisitorRepository{DB: h.Deps.DB}
	visitors, err := repo.ListByUser(middleware.CurrentUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visitors": visitors})
}

// GET /api/admin/visitors?date=
func (h VisitorHandler) AdminList(c *gin.Context) {
	repo := repositories.VisitorRepository{DB: h.Deps.DB}
	visitors, err := repo.ListByDate(c.Query("date"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visitors": visitors})
}

// GET /api/visitors/:id/gate-pass
func (h VisitorHandler) GatePass(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	svc := services.DocsService{
		VisitorRepo: repositories.VisitorRepository{DB: h.Deps.DB},
		RequestID:   middleware.GetRequestID(c),
	}
	pdf, filename, err := svc.GenerateGatePass(id, middleware.CurrentUserID(c), middleware.IsAdmin(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
