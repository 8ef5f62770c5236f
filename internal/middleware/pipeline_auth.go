package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PipelineAuthMiddleware guards the market-data pipeline routes (catalog
// registration and quote ingestion). The feed authenticates with a shared
// key in the X-API-Key header rather than a user token; comparison is
// constant-time. With no key configured the routes are closed entirely.
func PipelineAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			pipelineReject(c, http.StatusServiceUnavailable,
				"PIPELINE_NOT_CONFIGURED", "Pipeline endpoints are not configured")
			return
		}
		presented := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(presented), []byte(apiKey)) != 1 {
			pipelineReject(c, http.StatusUnauthorized,
				"INVALID_API_KEY", "Invalid or missing API key")
			return
		}
		c.Next()
	}
}

func pipelineReject(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}
