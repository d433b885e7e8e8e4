package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("answers 504 when the handler gives up on the deadline", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestTimeout(20 * time.Millisecond))
		router.GET("/slow", func(c *gin.Context) {
			<-c.Request.Context().Done()
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		assert.Contains(t, w.Body.String(), "TIMEOUT")
		assert.Equal(t, "true", w.Header().Get("X-Timeout"))
	})

	t.Run("does not interfere with fast requests", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestTimeout(time.Second))
		router.GET("/fast", func(c *gin.Context) {
			_, hasDeadline := c.Request.Context().Deadline()
			assert.True(t, hasDeadline)
			c.JSON(http.StatusOK, gin.H{"message": "success"})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fast", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-Timeout"))
	})

	t.Run("keeps the handler response if it wrote before the deadline", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestTimeout(10 * time.Millisecond))
		router.GET("/written", func(c *gin.Context) {
			c.JSON(http.StatusConflict, gin.H{"error": "busy"})
			<-c.Request.Context().Done()
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/written", nil))

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
