package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the comma-separated origins. "*" allows any origin.
// Requests from other origins are refused with 403.
func CORS(origins string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", CorrelationIDHeader, UpstreamCorrelationIDHeader}
	cfg.ExposeHeaders = []string{CorrelationIDHeader}
	cfg.MaxAge = 24 * time.Hour

	var allowed []string
	for _, o := range strings.Split(origins, ",") {
		o = strings.TrimSpace(o)
		switch {
		case o == "":
		case o == "*":
			cfg.AllowAllOrigins = true
		default:
			allowed = append(allowed, o)
		}
	}
	if !cfg.AllowAllOrigins {
		if len(allowed) == 0 {
			allowed = []string{"http://localhost:3000"}
		}
		cfg.AllowOrigins = allowed
	}

	return cors.New(cfg)
}
