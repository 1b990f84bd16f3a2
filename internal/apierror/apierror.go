// Package apierror maps service errors to HTTP responses.
package apierror

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/conflict"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/logger"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// Status returns the HTTP status for err.
func Status(err error) int {
	if _, ok := conflict.AsConflict(err); ok {
		return http.StatusConflict
	}
	switch {
	case errors.Is(err, conflict.ErrInvalidArgument), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err as a gin.H body. Conflicts carry the conflicting IDs;
// internal errors are logged and reported without detail.
func Respond(c *gin.Context, log logger.Logger, err error) {
	status := Status(err)
	switch status {
	case http.StatusConflict:
		ce, _ := conflict.AsConflict(err)
		c.JSON(status, gin.H{"error": ce.Error(), "conflicting_ids": ce.ConflictingIDs})
	case http.StatusInternalServerError:
		log.WithContext(c.Request.Context()).Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "internal server error"})
	default:
		c.JSON(status, gin.H{"error": err.Error()})
	}
}
