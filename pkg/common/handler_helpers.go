package common

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/car-rental/pkg/logger"
	"go.uber.org/zap"
)

// HandleServiceError writes the response for a service error.
// Returns true if an error was handled (and response was sent), false otherwise.
//
// Usage:
//
//	rental, err := h.service.Add(ctx, &req)
//	if HandleServiceError(c, err, "failed to create rental") {
//	    return
//	}
func HandleServiceError(c *gin.Context, err error, fallbackMessage string) bool {
	if err == nil {
		return false
	}

	if appErr, ok := AsAppError(err); ok {
		if appErr.Code >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request.Context(), fallbackMessage, zap.Error(err))
		}
		AppErrorResponse(c, appErr)
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		logger.WarnContext(c.Request.Context(), fallbackMessage, zap.Error(err))
		AppErrorResponse(c, NewAppError(http.StatusGatewayTimeout, CodeTimeout, "request timed out", err))
		return true
	}

	logger.ErrorContext(c.Request.Context(), fallbackMessage, zap.Error(err))
	ErrorResponse(c, http.StatusInternalServerError, fallbackMessage)
	return true
}

// ParseUUIDParam parses a UUID from a URL parameter.
// Returns the UUID and true on success, or sends an error response and returns false on failure.
func ParseUUIDParam(c *gin.Context, paramName, displayName string) (uuid.UUID, bool) {
	paramValue := c.Param(paramName)
	if paramValue == "" {
		ErrorResponse(c, http.StatusBadRequest, displayName+" is required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(paramValue)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid "+displayName)
		return uuid.Nil, false
	}

	return id, true
}

// BindJSON binds JSON request body and sends error response on failure.
// Returns true on success, false on failure (response already sent).
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		AppErrorResponse(c, NewBadRequestError("invalid request body", err))
		return false
	}
	return true
}
