package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/config"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/http/middleware"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/repositories"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/services"
)

type BookingHandler struct {
	Deps config.Deps
}

func (h BookingHandler) service(c *gin.Context) services.BookingService {
	return services.BookingService{
		Repo:      repositories.BookingRepository{DB: h.Deps.DB},
		RequestID: middleware.GetRequestID(c),
	}
}

type createBookingRequest struct {
	Amenity     string `json:"amenity" binding:"required"`
	BookingDate string `json:"bookingDate" binding:"required"`
	StartTime   string `json:"startTime" binding:"required"`
	EndTime     string `json:"endTime" binding:"required"`
	Purpose     string `json:"purpose"`
}

// POST /api/bookings
func (h BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	booking, err := h.service(c).Create(services.CreateBookingInput{
		UserID:      middleware.CurrentUserID(c),
		Amenity:     req.Amenity,
		BookingDate: req.BookingDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Purpose:     req.Purpose,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// GET /api/bookings
func (h BookingHandler) List(c *gin.Context) {
	repo := repositories.BookingRepository{DB: h.Deps.DB}
	bookings, err := repo.ListByUser(middleware.CurrentUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GET /api/bookings/:id
func (h BookingHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	booking, err := h.service(c).Get(id, middleware.CurrentUserID(c), middleware.IsAdmin(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// POST /api/bookings/:id/cancel
func (h BookingHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service(c).Cancel(id, middleware.CurrentUserID(c)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking cancelled"})
}

// GET /api/admin/bookings?status=
func (h BookingHandler) AdminList(c *gin.Context) {
	repo := repositories.BookingRepository{DB: h.Deps.DB}
	bookings, err := repo.ListByStatus(c.Query("status"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
