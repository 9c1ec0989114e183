package handlers

import (
	"fmt"
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
)

type ConcernHandler struct {
	Deps config.Deps
}

// POST /api/concerns
// multipart form: category, subject, description, optional photo
func (h ConcernHandler) Create(c *gin.Context) {
	concern := models.Concern{
		UserID:      middleware.CurrentUserID(c),
		Category:    strings.TrimSpace(c.PostForm("category")),
		Subject:     strings.TrimSpace(c.PostForm("subject")),
		Description: strings.TrimSpace(c.PostForm("description")),
		Status:      models.ConcernPending,
	}
	if concern.Category == "" || concern.Subject == "" || concern.Description == "" {
		RespondDomainError(c, domain.ValidationError{Msg: "category, subject and description are required"})
		return
	}

	if fileHeader, err := c.FormFile("photo"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			RespondDomainError(c, domain.ValidationError{Field: "photo", Msg: "cannot read uploaded file", Err: err})
			return
		}
		defer file.Close()

		body, contentType, err := services.OpenImage(file, fileHeader.Size)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		key := fmt.Sprintf("concerns/%d/%s", concern.UserID, uuid.NewString())
		ref, err := h.Deps.Blobs.Put(c.Request.Context(), key, contentType, body, fileHeader.Size)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		concern.PhotoRef = ref
	}

	repo := repositories.ConcernRepository{DB: h.Deps.DB}
	if err := repo.Create(&concern); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, concern)
}

// GET /api/concerns
func (h ConcernHandler) List(c *gin.Context) {
	repo := repositories.ConcernRepository{DB: h.Deps.DB}
	concerns, err := repo.ListByUser(middleware.CurrentUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"concerns": concerns})
}

// GET /api/admin/concerns?status=
func (h ConcernHandler) AdminList(c *gin.Context) {
	repo := repositories.ConcernRepository{DB: h.Deps.DB}
	concerns, err := repo.ListByStatus(c.Query("status"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"concerns": concerns})
}

type concernStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PUT /api/admin/concerns/:id/status
func (h ConcernHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req concernStatusRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	repo := repositories.ConcernRepository{DB: h.Deps.DB}
	concern, err := repo.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if !models.ConcernStatusAllowed(concern.Status, req.Status) {
		RespondDomainError(c, domain.InvalidStateError{
			Resource: "concern",
			Current:  concern.Status,
			Msg:      fmt.Sprintf("cannot move concern from %s to %s", concern.Status, req.Status),
		})
		return
	}
	if err := repo.SetStatus(id, concern.Status, req.Status); err != nil {
		RespondDomainError(c, err)
		return
	}
	concern.Status = req.Status
	c.JSON(http.StatusOK, concern)
}
