package routes

import (
	"errors"
	"net/http"

	"taskdesk/taskdesk/logger"
	"taskdesk/taskdesk/services"

	"github.com/gin-gonic/gin"
)

func respondValidation(c *gin.Context, fields map[string][]string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation error", "fields": fields})
}

// respondError maps service errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		respondValidation(c, verr.Fields)
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, services.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
	case errors.Is(err, services.ErrInactiveUser):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User inactive or deleted"})
	default:
		logger.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
