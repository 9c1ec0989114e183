package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/config"
)

type SystemHandler struct {
	Deps config.Deps
}

func (h SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "grove-backend"})
}

func (h SystemHandler) DBCheck(c *gin.Context) {
	if h.Deps.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not connected"})
		return
	}
	var count int
	if err := h.Deps.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database connection OK", "users_in_db": count})
}
