package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/car-rental/pkg/common"
	"github.com/richxcame/car-rental/pkg/logger"
	"go.uber.org/zap"
)

// RequestTimeout bounds the request context. Handlers run on the request
// goroutine and must honor ctx; if the deadline passes before anything is
// written, the middleware answers 504.
func RequestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			c.Header("X-Timeout", "true")
			common.AppErrorResponse(c, common.NewAppError(http.StatusGatewayTimeout, common.CodeTimeout, "request timeout", ctx.Err()))
			c.Abort()

			logger.WithContext(ctx).Warn("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Duration("timeout", timeout),
			)
		}
	}
}
