package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/http/middleware"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError performs the single mapping from the domain error
// taxonomy to HTTP status codes. Raw driver/storage errors never reach
// the client.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error())
	case domain.IsInvalidState(err):
		respondError(c, http.StatusConflict, "invalid_state", err.Error())
	case domain.IsForbidden(err):
		respondError(c, http.StatusForbidden, "forbidden", err.Error())
	case domain.IsPartialFailure(err):
		// must stay distinguishable so an operator can reconcile
		respondError(c, http.StatusInternalServerError, "partial_failure", err.Error())
	case domain.IsDependency(err):
		respondError(c, http.StatusBadGateway, "dependency_error", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}
