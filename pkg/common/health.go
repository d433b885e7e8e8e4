package common

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Timestamp string                 `json:"timestamp"`
	Uptime    string                 `json:"uptime,omitempty"`
	Checks    map[string]CheckStatus `json:"checks,omitempty"`
}

// CheckStatus represents the status of a single dependency check
type CheckStatus struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// HealthCheckFunc probes a single dependency
type HealthCheckFunc func(ctx context.Context) error

const readinessCheckTimeout = 2 * time.Second

var startTime = time.Now()

// LivenessProbe reports that the process is up. It does not touch dependencies.
func LivenessProbe(serviceName, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "alive",
			Service:   serviceName,
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Uptime:    time.Since(startTime).String(),
		})
	}
}

// ReadinessProbe runs every dependency check in parallel and answers 503
// if any of them fails.
func ReadinessProbe(serviceName, version string, checks map[string]HealthCheckFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		results := RunChecks(c.Request.Context(), checks)

		status, code := "ready", http.StatusOK
		for _, r := range results {
			if r.Status != "healthy" {
				status, code = "not ready", http.StatusServiceUnavailable
				break
			}
		}

		c.JSON(code, HealthResponse{
			Status:    status,
			Service:   serviceName,
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Uptime:    time.Since(startTime).String(),
			Checks:    results,
		})
	}
}

// RunChecks executes the checks concurrently, each bounded by its own timeout.
func RunChecks(ctx context.Context, checks map[string]HealthCheckFunc) map[string]CheckStatus {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]CheckStatus, len(checks))
	)

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check HealthCheckFunc) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, readinessCheckTimeout)
			defer cancel()

			start := time.Now()
			err := check(checkCtx)
			st := CheckStatus{Status: "healthy", Duration: time.Since(start).String()}
			if err != nil {
				st.Status = "unhealthy"
				st.Message = err.Error()
			}

			mu.Lock()
			results[name] = st
			mu.Unlock()
		}(name, check)
	}

	wg.Wait()
	return results
}
