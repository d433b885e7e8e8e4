package middleware

import (
	"strings"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/car-rental/pkg/logger"
)

const (
	// CorrelationIDHeader is echoed on every response
	CorrelationIDHeader = "X-Request-ID"
	// UpstreamCorrelationIDHeader is accepted when a gateway already assigned an ID
	UpstreamCorrelationIDHeader = "X-Correlation-ID"
	// CorrelationIDKey is the gin context key for the correlation ID
	CorrelationIDKey = "correlation_id"
)

// CorrelationID reuses a valid inbound request ID or mints one, and attaches it
// to the request context, the response headers and the Sentry scope. Rental
// events published during the request carry the same ID.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := inboundCorrelationID(c)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Set(CorrelationIDKey, correlationID)
		c.Request = c.Request.WithContext(logger.ContextWithCorrelationID(c.Request.Context(), correlationID))
		c.Writer.Header().Set(CorrelationIDHeader, correlationID)

		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.Scope().SetTag(CorrelationIDKey, correlationID)
		}

		c.Next()
	}
}

// inboundCorrelationID returns the first header value that parses as a UUID.
// Anything else is dropped so clients cannot inject arbitrary text into logs.
func inboundCorrelationID(c *gin.Context) string {
	for _, header := range []string{CorrelationIDHeader, UpstreamCorrelationIDHeader} {
		value := strings.TrimSpace(c.GetHeader(header))
		if value == "" {
			continue
		}
		if id, err := uuid.Parse(value); err == nil {
			return id.String()
		}
	}
	return ""
}

// GetCorrelationID extracts correlation ID from gin context
func GetCorrelationID(c *gin.Context) string {
	if id, exists := c.Get(CorrelationIDKey); exists {
		if correlationID, ok := id.(string); ok {
			return correlationID
		}
	}
	return logger.CorrelationIDFromContext(c.Request.Context())
}
