package handler

import (
	"errors"
	"net/http"

	"agent-advisor/internal/form"
	"agent-advisor/internal/model"
	"agent-advisor/internal/storage"
	"agent-advisor/pkg/logger"

	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, form.ErrBusy), errors.Is(err, form.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidField), errors.Is(err, model.ErrInvalidValue),
		errors.Is(err, form.ErrIndexOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
