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
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/repositories"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/services"
)

type AnnouncementHandler struct {
	Deps config.Deps
}

// GET /api/announcements?category=
func (h AnnouncementHandler) List(c *gin.Context) {
	repo := repositories.AnnouncementRepository{DB: h.Deps.DB}
	items, err := repo.List(c.Query("category"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": items})
}

// GET /api/announcements/:id
func (h AnnouncementHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	repo := repositories.AnnouncementRepository{DB: h.Deps.DB}
	a, err := repo.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// POST /api/admin/announcements
// multipart form: title, body, category, optional image
func (h AnnouncementHandler) Create(c *gin.Context) {
	a := models.Announcement{
		Title:    strings.TrimSpace(c.PostForm("title")),
		Body:     strings.TrimSpace(c.PostForm("body")),
		Category: strings.TrimSpace(c.DefaultPostForm("category", "general")),
	}
	if a.Title == "" || a.Body == "" {
		RespondDomainError(c, domain.ValidationError{Field: "title/body", Msg: "required"})
		return
	}

	if ref, ok, err := h.storeImage(c); err != nil {
		RespondDomainError(c, err)
		return
	} else if ok {
		a.ImageURL = ref
	}

	repo := repositories.AnnouncementRepository{DB: h.Deps.DB}
	if err := repo.Create(&a); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// PUT /api/admin/announcements/:id
func (h AnnouncementHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	repo := repositories.AnnouncementRepository{DB: h.Deps.DB}
	a, err := repo.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	if v := strings.TrimSpace(c.PostForm("title")); v != "" {
		a.Title = v
	}
	if v := strings.TrimSpace(c.PostForm("body")); v != "" {
		a.Body = v
	}
	if v := strings.TrimSpace(c.PostForm("category")); v != "" {
		a.Category = v
	}
	if ref, hasImage, err := h.storeImage(c); err != nil {
		RespondDomainError(c, err)
		return
	} else if hasImage {
		a.ImageURL = ref
	}

	if err := repo.Update(a); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// DELETE /api/admin/announcements/:id
func (h AnnouncementHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	repo := repositories.AnnouncementRepository{DB: h.Deps.DB}
	if err := repo.Delete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "announcement deleted"})
}

func (h AnnouncementHandler) storeImage(c *gin.Context) (string, bool, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return "", false, nil
	}
	file, err := fileHeader.Open()
	if err != nil {
		return "", false, domain.ValidationError{Field: "image", Msg: "cannot read uploaded file", Err: err}
	}
	defer file.Close()

	body, contentType, err := services.OpenImage(file, fileHeader.Size)
	if err != nil {
		return "", false, err
	}
	key := fmt.Sprintf("announcements/%s", uuid.NewString())
	ref, err := h.Deps.Blobs.Put(c.Request.Context(), key, contentType, body, fileHeader.Size)
	if err != nil {
		return "", false, err
	}
	return ref, true, nil
}
