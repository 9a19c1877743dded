package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shopcart/backend/internal/domain/shared"
	"github.com/shopcart/backend/internal/infrastructure/logger"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// HandleError writes err as a plain text response with the status matching
// its domain code. Server errors are logged on the request logger.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.GetGinLogger(c).Error("request failed", zap.Error(err))
		_ = c.Error(err)
	}
	c.String(status, err.Error())
}

// OK sends a plain text 200 "OK"
func (h *BaseHandler) OK(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
