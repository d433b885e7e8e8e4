package errors

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/richxcame/car-rental/pkg/common"
	"github.com/richxcame/car-rental/pkg/logger"
)

// SentryConfig holds configuration for Sentry integration
type SentryConfig struct {
	DSN              string
	Environment      string
	Release          string
	SampleRate       float64
	TracesSampleRate float64
	Debug            bool
	ServerName       string
}

// DefaultSentryConfig reads SENTRY_* variables
func DefaultSentryConfig(environment, serviceName string) *SentryConfig {
	return &SentryConfig{
		DSN:              os.Getenv("SENTRY_DSN"),
		Environment:      environment,
		Release:          os.Getenv("SENTRY_RELEASE"),
		SampleRate:       envFloat("SENTRY_SAMPLE_RATE", 1.0),
		TracesSampleRate: envFloat("SENTRY_TRACES_SAMPLE_RATE", 0.1),
		Debug:            os.Getenv("SENTRY_DEBUG") == "true",
		ServerName:       serviceName,
	}
}

// Enabled reports whether a DSN is configured
func (c *SentryConfig) Enabled() bool {
	return c != nil && c.DSN != ""
}

// InitSentry initializes the Sentry SDK with the given configuration
func InitSentry(config *SentryConfig) error {
	if !config.Enabled() {
		return fmt.Errorf("sentry DSN is not configured")
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              config.DSN,
		Environment:      config.Environment,
		Release:          config.Release,
		SampleRate:       config.SampleRate,
		TracesSampleRate: config.TracesSampleRate,
		Debug:            config.Debug,
		ServerName:       config.ServerName,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			if event.Level == sentry.LevelInfo || event.Level == sentry.LevelDebug {
				return nil
			}
			return event
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}

	return nil
}

// Flush flushes the Sentry buffer
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// CaptureErrorWithContext reports err with tags and extras. Expected domain
// errors (4xx AppErrors) are skipped.
func CaptureErrorWithContext(ctx context.Context, err error, tags map[string]string, extras map[string]interface{}) *sentry.EventID {
	if !ShouldReportError(err) {
		return nil
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}

	var id *sentry.EventID
	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		for k, v := range extras {
			scope.SetExtra(k, v)
		}
		if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
			scope.SetTag("correlation_id", correlationID)
		}
		id = hub.CaptureException(err)
	})
	return id
}

// AddBreadcrumb records a step of a multi-step operation on the hub bound to ctx
func AddBreadcrumb(ctx context.Context, category, message string, data map[string]interface{}) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.AddBreadcrumb(&sentry.Breadcrumb{
		Category:  category,
		Message:   message,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
		Data:      data,
	}, nil)
}

// ShouldReportError determines if an error should be reported to Sentry.
// Client errors carried as AppErrors are part of normal operation.
func ShouldReportError(err error) bool {
	if err == nil {
		return false
	}
	if appErr, ok := common.AsAppError(err); ok && appErr.Code < 500 {
		return false
	}
	return true
}

// LevelForStatus maps HTTP status codes to Sentry severity levels
func LevelForStatus(statusCode int) sentry.Level {
	switch {
	case statusCode >= 500:
		return sentry.LevelError
	case statusCode == 429:
		return sentry.LevelWarning
	default:
		return sentry.LevelInfo
	}
}

func envFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}
