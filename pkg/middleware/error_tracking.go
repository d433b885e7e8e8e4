package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/richxcame/car-rental/pkg/common"
	"github.com/richxcame/car-rental/pkg/errors"
	"github.com/richxcame/car-rental/pkg/logger"
	"go.uber.org/zap"
)

// SentryMiddleware binds a Sentry hub to every request
func SentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// ErrorHandler reports unexpected failures to Sentry after the request finishes
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		statusCode := c.Writer.Status()
		for _, ginErr := range c.Errors {
			if errors.ShouldReportError(ginErr.Err) {
				captureError(c, ginErr.Err, statusCode)
			}
		}

		if statusCode >= http.StatusInternalServerError && len(c.Errors) == 0 {
			captureError(c, fmt.Errorf("HTTP %d: %s %s", statusCode, c.Request.Method, c.FullPath()), statusCode)
		}
	}
}

// Recovery turns a panic into a 500 response and reports it
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				hub := sentrygin.GetHubFromContext(c)
				if hub == nil {
					hub = sentry.CurrentHub().Clone()
				}
				hub.RecoverWithContext(c.Request.Context(), rec)

				logger.ErrorContext(c.Request.Context(), "panic recovered",
					zap.Any("panic", rec),
					zap.String("path", c.Request.URL.Path),
				)

				common.AppErrorResponse(c, common.NewInternalError("an unexpected error occurred", nil))
				c.Abort()
			}
		}()

		c.Next()
	}
}

func captureError(c *gin.Context, err error, statusCode int) {
	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(c.Request)
		scope.SetLevel(errors.LevelForStatus(statusCode))
		scope.SetTag("http.method", c.Request.Method)
		scope.SetTag("http.status_code", fmt.Sprintf("%d", statusCode))
		scope.SetTag("endpoint", c.FullPath())
		if correlationID := GetCorrelationID(c); correlationID != "" {
			scope.SetTag("correlation_id", correlationID)
		}
		hub.CaptureException(err)
	})
}
