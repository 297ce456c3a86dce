package handler

import (
	"errors"
	"net/http"

	"jsmc-rsvp/internal/logger"
	"jsmc-rsvp/internal/service"

	"github.com/gin-gonic/gin"
)

// writeError maps service errors to status codes. Anything unexpected is
// logged and reported as a database failure.
func writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, service.ErrAlreadyExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotOpen),
		errors.Is(err, service.ErrNotEditable),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrNotCompleted),
		errors.Is(err, service.ErrDuplicateRSVP):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.FromContext(c.Request.Context()).Error("request.failed",
			"method", c.Request.Method, "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database unavailable"})
	}
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}
