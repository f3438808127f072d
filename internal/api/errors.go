package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"coachlab/internal/service"
	"coachlab/internal/store"
)

// statusFor maps service and store errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrAthleteNotFound),
		errors.Is(err, store.ErrDiaryEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInsufficientData),
		errors.Is(err, service.ErrUntrustedFit),
		errors.Is(err, service.ErrNoPowerModel):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ...}. Internal errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
